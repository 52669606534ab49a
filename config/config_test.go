package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 3000},
		Backend: BackendConfig{LocalFallback: "http://localhost:8000"},
		Session: SessionConfig{Driver: "memory", Secret: "0123456789abcdef-secret"},
		Upload:  UploadConfig{MaxFileSize: 5 << 20},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := map[string]func(c *Config){
		"空密钥":   func(c *Config) { c.Session.Secret = "" },
		"密钥过短":  func(c *Config) { c.Session.Secret = "short" },
		"未知驱动":  func(c *Config) { c.Session.Driver = "mongo" },
		"端口越界":  func(c *Config) { c.Server.Port = 70000 },
		"上传限制":  func(c *Config) { c.Upload.MaxFileSize = 0 },
		"无后端地址": func(c *Config) { c.Backend = BackendConfig{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			if err := c.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("session:\n  driver: memory\n  secret: file-secret-0123456789\nbackend:\n  base_url: http://api.local:9000\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GESTION_SERVER_PORT", "4100")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 4100 {
		t.Errorf("环境变量应覆盖端口，实际=%d", cfg.Server.Port)
	}
	if cfg.Backend.BaseURL != "http://api.local:9000" {
		t.Errorf("期望 base_url 来自配置文件，实际=%s", cfg.Backend.BaseURL)
	}
	if cfg.Upload.MaxFileSize != 5<<20 {
		t.Errorf("期望默认上传限制 5MB，实际=%d", cfg.Upload.MaxFileSize)
	}
	if cfg.Session.CookieName != "gestion_sid" {
		t.Errorf("期望默认 cookie 名 gestion_sid，实际=%s", cfg.Session.CookieName)
	}
}
