package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	Mongo   MongoConfig
	JWT     JWTConfig
	HTTP    HTTPConfig
	Uploads UploadsConfig
	Sentry  SentryConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// IsProduction indica si los detalles internos de los errores deben ocultarse.
func (c AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// MongoConfig configuración del almacén de documentos.
// ConnectAttempts y RetryBackoff solo aplican al establecimiento de la conexión.
type MongoConfig struct {
	URI             string
	Database        string
	ConnectAttempts int
	RetryBackoff    time.Duration // espera lineal: intento n espera n*RetryBackoff
	Timeout         time.Duration
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	BodyLimitMB int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BodyLimit devuelve el límite del cuerpo de la petición en bytes.
func (c HTTPConfig) BodyLimit() int {
	return c.BodyLimitMB * 1024 * 1024
}

// UploadsConfig almacenamiento local de imágenes de reportes.
type UploadsConfig struct {
	Dir       string
	MaxFileMB int
}

// MaxFileBytes tamaño máximo por archivo en bytes.
func (c UploadsConfig) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) * 1024 * 1024
}

// SentryConfig reporte de errores (vacío = deshabilitado).
type SentryConfig struct {
	DSN              string
	TracesSampleRate float64
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, MONGO_URI, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "reportes-api"),
		},
		Mongo: MongoConfig{
			URI:             getString(v, "MONGO_URI", "mongodb://localhost:27017"),
			Database:        getString(v, "MONGO_DB", "reportes"),
			ConnectAttempts: getInt(v, "MONGO_CONNECT_ATTEMPTS", 3),
			RetryBackoff:    time.Duration(getInt(v, "MONGO_RETRY_BACKOFF_SECONDS", 2)) * time.Second,
			Timeout:         time.Duration(getInt(v, "MONGO_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 480),
			Issuer:     getString(v, "JWT_ISSUER", "reportes-api"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 8080),
			BodyLimitMB: getInt(v, "HTTP_BODY_LIMIT_MB", 20),
			CORSOrigins: getString(v, "CORS_ORIGINS", "*"),
		},
		Uploads: UploadsConfig{
			Dir:       getString(v, "UPLOADS_DIR", "uploads"),
			MaxFileMB: getInt(v, "UPLOADS_MAX_FILE_MB", 10),
		},
		Sentry: SentryConfig{
			DSN:              getString(v, "SENTRY_DSN", ""),
			TracesSampleRate: getFloat(v, "SENTRY_TRACES_SAMPLE_RATE", 0.2),
		},
	}
}

// Validate verifica los valores sin los cuales el servidor no puede arrancar.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET es requerido")
	}
	if c.Mongo.URI == "" || c.Mongo.Database == "" {
		return fmt.Errorf("config: MONGO_URI y MONGO_DB son requeridos")
	}
	if c.Mongo.ConnectAttempts < 1 {
		return fmt.Errorf("config: MONGO_CONNECT_ATTEMPTS debe ser >= 1")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		f, err := strconv.ParseFloat(v.GetString(key), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}
