// Package config defines connection settings for the database adapters.
package config

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	MaxOpenConns    int `yaml:"maxOpenConns" mapstructure:"maxOpenConns"`
	MaxIdleConns    int `yaml:"maxIdleConns" mapstructure:"maxIdleConns"`
	ConnMaxLifetime int `yaml:"connMaxLifetime" mapstructure:"connMaxLifetime"` // seconds
}

// DatabaseConfig holds the settings for one database connection.
// Which fields apply depends on Type: file-based databases (sqlite) use Path,
// server-based databases use Host/Port/Database/User/Password.
type DatabaseConfig struct {
	Type     string     `yaml:"type" mapstructure:"type"`
	Host     string     `yaml:"host" mapstructure:"host"`
	Port     int        `yaml:"port" mapstructure:"port"`
	Database string     `yaml:"database" mapstructure:"database"`
	User     string     `yaml:"user" mapstructure:"user"`
	Password string     `yaml:"password" mapstructure:"password"`
	SSLMode  string     `yaml:"sslmode" mapstructure:"sslmode"`
	Path     string     `yaml:"path" mapstructure:"path"`
	Pool     PoolConfig `yaml:"pool" mapstructure:"pool"`
}
