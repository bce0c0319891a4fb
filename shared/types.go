package shared

type ServerConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
	Vitals VitalsConfig `mapstructure:"vitals"`
	Google GoogleConfig `mapstructure:"google"`
}

type SqliteConfig struct {
	// Leave empty to store the db unencrypted
	PassPhrase string `mapstructure:"passPhrase"`
}

type VitalsConfig struct {
	PrivateKeyPem string         `mapstructure:"privateKeyPem" validate:"required"`
	BcryptCost    int            `mapstructure:"bcryptCost" validate:"omitempty,min=4,max=31"`
	DataDir       string         `mapstructure:"dataDir"`
	Cron          CronConfig     `mapstructure:"cron"`
	Listener      ListenerConfig `mapstructure:"listener"`
	Cors          CorsConfig     `mapstructure:"cors"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
}

type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type StorageConfig struct {
	Bucket                    string `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string `mapstructure:"prefix"`
	SqliteBackupSchedule      string `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync bool   `mapstructure:"enableSqliteBackupAndSync"`
}
