// internal/model/smtp_config.go
package model

// SMTPConfig holds relay credentials for one campaign. It is a capability
// token: it travels inside queued job payloads and is never logged or
// written to the database.
type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"user"`
	Password string `json:"pass"`
}

// Secure reports whether the relay expects implicit TLS (SMTPS).
func (c SMTPConfig) Secure() bool {
	return c.Port == 465
}
