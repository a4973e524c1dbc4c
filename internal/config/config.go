package config

import (
	"log"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 全局配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Fee      FeeConfig      `mapstructure:"fee"`
	Business BusinessConfig `mapstructure:"business"`
}

type ServerConfig struct {
	Port      int    `mapstructure:"port"`
	QRBaseURL string `mapstructure:"qr_base_url"` // 收款码链接前缀
}

type MySQLConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string         `mapstructure:"brokers"`
	Topic   KafkaTopicConfig `mapstructure:"topic"`
}

type KafkaTopicConfig struct {
	LedgerEvents string `mapstructure:"ledger_events"`
}

// FeeConfig 手续费率配置（百分比，非负）
// 三种操作各自独立费率，显式注入转账引擎，不做全局查表
type FeeConfig struct {
	TransferPercent float64 `mapstructure:"transfer_percent"`
	DepositPercent  float64 `mapstructure:"deposit_percent"`
	WithdrawPercent float64 `mapstructure:"withdraw_percent"`
}

// TransferRate 转账费率
func (f *FeeConfig) TransferRate() decimal.Decimal {
	return decimal.NewFromFloat(f.TransferPercent)
}

// DepositRate 入金费率
func (f *FeeConfig) DepositRate() decimal.Decimal {
	return decimal.NewFromFloat(f.DepositPercent)
}

// WithdrawRate 提现费率
func (f *FeeConfig) WithdrawRate() decimal.Decimal {
	return decimal.NewFromFloat(f.WithdrawPercent)
}

type BusinessConfig struct {
	MaxRetryCount int `mapstructure:"max_retry_count"` // 消息投递最大重试次数
}

var GlobalConfig *Config

// LoadConfig 加载配置文件
func LoadConfig(configPath string) *Config {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("读取配置文件失败: %v", err)
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	if config.Fee.TransferPercent < 0 || config.Fee.DepositPercent < 0 || config.Fee.WithdrawPercent < 0 {
		log.Fatalf("手续费率不能为负数: %+v", config.Fee)
	}

	GlobalConfig = config
	return config
}
