package config

// ValidateParams 额外验证关键运行参数，供热加载路径复用。
func ValidateParams(cfg AppConfig) error {
	if cfg.Gateway.APIKey == "" || cfg.Gateway.APISecret == "" {
		return ErrInvalid("gateway.apiKey/apiSecret is required")
	}
	if cfg.Gateway.RecvWindowMs <= 0 {
		return ErrInvalid("gateway.recvWindowMs must be > 0")
	}
	if cfg.Gateway.ReconnectMax <= 0 {
		return ErrInvalid("gateway.reconnectMax must be > 0")
	}
	return nil
}

// ErrInvalid 用于参数验证错误。
type ErrInvalid string

func (e ErrInvalid) Error() string { return string(e) }
