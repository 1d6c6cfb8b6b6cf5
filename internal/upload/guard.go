package upload

import (
	"io"
	"net/http"
	"strings"

	"github.com/St1cky1/user-service/internal/entity"
)

const (
	// MaxFileSize - жесткий лимит на размер картинки
	MaxFileSize = 10 * 1024 * 1024

	// FileField - единственное файловое поле, которое принимаем
	FileField = "image"

	maxFieldSize = 1 * 1024 * 1024
)

// File - файл, целиком прочитанный в память
type File struct {
	Data        []byte
	ContentType string
}

// Form - распарсенная multipart-форма: текстовые поля + опциональный файл
type Form struct {
	Fields map[string]string
	File   *File
}

// Guard валидирует входящие файлы до того, как их увидит сервис:
// mime-фильтр, лимит размера, буферизация только в памяти
type Guard struct {
	maxSize int64
}

func NewGuard(maxSize int64) *Guard {
	return &Guard{
		maxSize: maxSize,
	}
}

// ParseForm читает multipart-запрос по частям. Запрос без multipart-тела
// считается пустой формой, отсутствие файла - не ошибка.
func (g *Guard) ParseForm(r *http.Request) (*Form, error) {
	form := &Form{
		Fields: make(map[string]string),
	}

	mr, err := r.MultipartReader()
	if err != nil {
		if err == http.ErrNotMultipart {
			return form, nil
		}
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		// текстовое поле
		if part.FileName() == "" {
			value, err := io.ReadAll(io.LimitReader(part, maxFieldSize))
			if err != nil {
				return nil, err
			}
			form.Fields[part.FormName()] = string(value)
			continue
		}

		// файл принимаем ровно один и только в поле image
		if part.FormName() != FileField || form.File != nil {
			return nil, entity.ErrUnexpectedFile
		}

		contentType := part.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, entity.ErrUnsupportedMedia
		}

		// читаем на байт больше лимита, чтобы отличить "ровно лимит" от "больше"
		data, err := io.ReadAll(io.LimitReader(part, g.maxSize+1))
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > g.maxSize {
			return nil, entity.ErrFileTooLarge
		}

		form.File = &File{
			Data:        data,
			ContentType: contentType,
		}
	}

	return form, nil
}
