package cloudinary

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/rewear-team/rewear-api/internal/config"
	"github.com/rewear-team/rewear-api/internal/utils"
)

// CloudinaryService предоставляет методы для работы с Cloudinary
type CloudinaryService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg *config.Config) *CloudinaryService {
	return &CloudinaryService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// SignUploadParams подписывает параметры загрузки ключом API
func (s *CloudinaryService) SignUploadParams(params url.Values) (string, error) {
	return api.SignParameters(params, s.cfg.CloudinaryConfig.APISecret)
}

// GenerateUploadParams выдает подписанные параметры для прямой загрузки
// изображения в Cloudinary. Одно изображение на вещь.
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	// Генерируем ID для вещи, если не передан
	itemID := c.Query("item_id")
	if itemID == "" {
		itemID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", s.cfg.CloudinaryConfig.UploadFolder)

	signature, err := s.SignUploadParams(params)
	if err != nil {
		log.Printf("Ошибка подписи параметров загрузки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка подготовки загрузки"})
	}

	return c.JSON(fiber.Map{
		"timestamp":  timestamp,
		"signature":  signature,
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"folder":     s.cfg.CloudinaryConfig.UploadFolder,
		"item_id":    itemID,
	})
}
