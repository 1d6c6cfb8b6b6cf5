package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/user-service/internal/api"
	"github.com/St1cky1/user-service/internal/infrastructure/client"
	"github.com/St1cky1/user-service/internal/repository"
	"github.com/St1cky1/user-service/internal/usecase"
	"github.com/St1cky1/user-service/internal/worker"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	var wg sync.WaitGroup

	dbConfig := client.Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  "disable",
	}

	rabbitMQURL := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		os.Getenv("RABBITMQ_USER"),
		os.Getenv("RABBITMQ_PASSWORD"),
		os.Getenv("RABBITMQ_HOST"),
		os.Getenv("RABBITMQ_PORT"))

	// Запускаем миграции
	if err := runMigrations(dbConfig.URL()); err != nil {
		log.Fatal("❌ Ошибка миграций:", err)
	}

	// Подключаемся к БД
	postgres, err := client.NewPostgresClient(dbConfig)
	if err != nil {
		log.Fatal("❌ Ошибка подключения к БД:", err)
	}
	defer postgres.Close()
	fmt.Println("✅ Подключение к БД установлено")

	// Подключаемся к RabbitMQ
	rabbitMQ, err := client.NewRabbitMQClient(rabbitMQURL)
	if err != nil {
		log.Fatal("❌ Ошибка подключения к RabbitMQ:", err)
	}
	defer rabbitMQ.Close()
	fmt.Println("✅ Подключение к RabbitMQ установлено")

	// Инициализируем репозитории и сервис
	userRepo := repository.NewUserRepository(postgres.Pool)
	auditRepo := repository.NewUserAuditRepository(postgres.Pool)
	userService := usecase.NewUserService(userRepo, auditRepo, rabbitMQ)

	// Запускаем воркер для обработки аудит-сообщений
	auditWorker := worker.NewAuditWorker(rabbitMQURL, auditRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Println("Запуск Audit Worker...")
		auditWorker.Start(workerCtx)
	}()

	// Сидируем базовых пользователей, если попросили
	if os.Getenv("SEED_USERS") == "true" {
		seeder := usecase.NewSeeder(userRepo)
		if err := seeder.Seed(context.Background()); err != nil {
			log.Printf("⚠️  Ошибка сидирования: %v", err)
		}
	}

	// Запускаем HTTP сервер
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: api.NewRouter(userService),
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		fmt.Println("Запуск HTTP сервера на порту " + port + "...")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}()

	fmt.Println("✅ User Service готов к работе!")
	fmt.Println(" REST API: http://localhost:" + port + "/api/v1/users")
	fmt.Println("RabbitMQ Management: http://localhost:15672")
	fmt.Println("Для остановки нажмите Ctrl+C")

	// Ждем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n🛑 Останавливаем сервис...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Ошибка остановки HTTP сервера: %v", err)
	}

	workerCancel()
	wg.Wait()
	fmt.Println("✅ Сервис остановлен")
}

func runMigrations(dbURL string) error {
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	fmt.Println("✅ Миграции применены")
	return nil
}
