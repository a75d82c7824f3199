package main

import (
	"log"
	"os"

	"enkai-backend/database"
	"enkai-backend/engine"
	"enkai-backend/handlers"
	"enkai-backend/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// 開発環境では.envファイルを読み込む
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found")
		}
	}

	// データベースに接続
	if err := database.Connect(); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// マイグレーションを実行
	if err := database.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// ライフサイクルエンジンと通知のセットアップ
	notifier := notify.NewEventNotifier(database.DB, notify.NewMailerFromEnv())
	eng := engine.New(database.DB, engine.ConfigFromEnv(), notifier)
	handlers.Setup(eng)

	// --- 定期実行ジョブのセットアップ ---
	// 締切の自動進行は各リクエスト入口でも遅延チェックされるが、
	// アクセスが無いイベントも進むように毎分スイープする
	c := cron.New()

	_, err := c.AddFunc("@every 1m", func() {
		log.Println("Running scheduled job: Checking voting deadlines...")
		if err := eng.SweepDeadlines(); err != nil {
			log.Println("Failed to sweep deadlines:", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}

	// ジョブを開始
	c.Start()
	log.Println("Deadline sweep scheduler started...")
	defer c.Stop()

	// Fiberアプリを作成
	app := fiber.New(fiber.Config{
		AppName: "Enkai Backend API v1.0.0",
	})

	// ミドルウェアを設定
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	// ヘルスチェックエンドポイント
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Enkai Backend API is running",
			"status":  "ok",
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	})

	// APIルート
	handlers.Register(app)

	// サーバーを起動
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
