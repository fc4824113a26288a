package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Dify      DifyConfig      `yaml:"dify"`
	Generator GeneratorConfig `yaml:"generator"`
	Client    ClientConfig    `yaml:"client"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port         int      `yaml:"port"`
	AllowOrigins []string `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	// sqlite（默认，零配置）或 mysql
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	Charset  string `yaml:"charset"`
}

type LLMConfig struct {
	// dify / openai / deepseek / mock
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

type DifyConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	// 应用类型：workflow/chat/completion
	AppType string `yaml:"app_type"`
	// response_mode: blocking/streaming（只支持 blocking 解析）
	ResponseMode      string `yaml:"response_mode"`
	WorkflowSystemKey string `yaml:"workflow_system_key"`
	WorkflowQueryKey  string `yaml:"workflow_query_key"`
	// Workflow 输出字段名（为空则自动猜测）
	WorkflowOutputKey string        `yaml:"workflow_output_key"`
	Timeout           time.Duration `yaml:"timeout"`
}

type GeneratorConfig struct {
	MaxURLs        int           `yaml:"max_urls"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
	ExcerptChars   int           `yaml:"excerpt_chars"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	// 单个文档页面的响应体上限（字节）
	MaxPageBytes int `yaml:"max_page_bytes"`
	// 允许抓取回环、内网、链路本地地址，仅用于本地调试
	AllowPrivateHosts bool `yaml:"allow_private_hosts"`
}

// ClientConfig 命令行/前端调用生成服务时使用
type ClientConfig struct {
	BaseURL      string        `yaml:"base_url"`
	GeneratePath string        `yaml:"generate_path"`
	HistoryPath  string        `yaml:"history_path"`
	Timeout      time.Duration `yaml:"timeout"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default 返回所有字段都有值的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8000, AllowOrigins: []string{"*"}},
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Path:    "data/docsynth.db",
			Host:    "127.0.0.1",
			Port:    3306,
			Charset: "utf8mb4",
		},
		LLM: LLMConfig{Provider: "mock"},
		Dify: DifyConfig{
			AppType:           "workflow",
			ResponseMode:      "blocking",
			WorkflowSystemKey: "system",
			WorkflowQueryKey:  "query",
			Timeout:           60 * time.Second,
		},
		Generator: GeneratorConfig{
			MaxURLs:        8,
			FetchTimeout:   10 * time.Second,
			ExcerptChars:   4000,
			RequestTimeout: 120 * time.Second,
			MaxUploadBytes: 10 << 20,
			MaxPageBytes:   2 << 20,
		},
		Client: ClientConfig{
			BaseURL:      "http://localhost:8000",
			GeneratePath: "/generate_guide",
			HistoryPath:  "/api/history",
			Timeout:      150 * time.Second,
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	config.applyEnv()
	return config, nil
}

// FromEnv 没有配置文件时使用默认值 + 环境变量
func FromEnv() *Config {
	config := Default()
	config.applyEnv()
	return config
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DOCSYNTH_LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("DOCSYNTH_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("DOCSYNTH_SERVER_URL"); v != "" {
		c.Client.BaseURL = v
	}
}
