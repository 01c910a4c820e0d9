package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/DRSN-tech/supplier-imports/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

type Config struct {
	Minio     *MinIOCfg
	Http      *HTTPConfig
	Db        *PGDBCfg
	Redis     *RedisCfg
	Kafka     *KafkaCfg
	Auth      *AuthCfg
	Scraper   *ScraperCfg
	Import    *ImportCfg
	Providers *ProvidersCfg
}

type KafkaCfg struct {
	Topic              string
	Brokers            []string
	NetworkMode        string
	Partitions         int
	ReplicationFactor  int
	OutboxBatchSize    int           // Сколько событий outbox-воркер забирает за раз
	OutboxPollInterval time.Duration // Страховочный опрос на случай потерянного NOTIFY
	OutboxStaleAfter   time.Duration // Через сколько зависшее в processing событие возвращается в очередь
}

type MinIOCfg struct {
	MinioEndpoint     string        // Адрес конечной точки Minio
	BucketName        string        // Бакет для изображений импортированных товаров
	MinioRootUser     string        // Имя пользователя для доступа к Minio
	MinioRootPassword string        // Пароль для доступа к Minio
	MinioUseSSL       bool          // Подключение к Minio по TLS
	MinioRegion       string        // Регион; заданный регион избавляет от запроса расположения бакета
	PublicRead        bool          // Бакет открыт на чтение анонимно
	PublicBaseURL     string        // Базовый адрес для публичных ссылок на объекты
	SignedURLTTL      time.Duration // Время жизни подписанной ссылки, если бакет закрыт
	MaxImageSize      int64         // Максимальный размер скачиваемого изображения
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	SwaggerURL     string
	AllowedOrigins []string // Origin админ-панели для CORS
}

type PGDBCfg struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int32
	ConnectTimeout time.Duration
	MigrationsPath string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

// AuthCfg описывает эндпоинт проверки токенов внешнего auth-сервиса.
type AuthCfg struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type ScraperCfg struct {
	UserAgent string
	Timeout   time.Duration
	RPS       float64
	Burst     int
}

type ImportCfg struct {
	FetchCacheTTL time.Duration // Сколько хранить результат разбора страницы поставщика
	LockTTL       time.Duration // Сколько живёт блокировка импорта одного external_id
}

// ProvidersCfg хранит ключи партнёрских API поставщиков.
type ProvidersCfg struct {
	AlibabaAPIKey    string
	AliExpressAPIKey string
	JumiaAPIKey      string
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
// Перед чтением переменных подхватывается .env, если он есть.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to load .env: %v", err)
	}

	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := loadAuthCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	scraper, err := loadScraperCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	imp, err := loadImportCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:     minio,
		Http:      http,
		Db:        db,
		Redis:     redis,
		Kafka:     kafka,
		Auth:      auth,
		Scraper:   scraper,
		Import:    imp,
		Providers: loadProvidersCfg(),
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "supplier-imports"
		defaultOutboxBatchSize   = 50
		defaultOutboxPoll        = 30 * time.Second
		defaultOutboxStaleAfter  = 5 * time.Minute
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := splitCSV(brokerStr)

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	batchSize, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultOutboxBatchSize)
	if err != nil || batchSize <= 0 {
		return nil, e.Wrap("OUTBOX_BATCH_SIZE", e.ErrIncorrectEnvVariable)
	}

	pollInterval, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultOutboxPoll)
	if err != nil || pollInterval <= 0 {
		return nil, e.Wrap("OUTBOX_POLL_INTERVAL", e.ErrIncorrectEnvVariable)
	}

	staleAfter, err := parseDurationEnv("OUTBOX_STALE_AFTER", defaultOutboxStaleAfter)
	if err != nil || staleAfter <= 0 {
		return nil, e.Wrap("OUTBOX_STALE_AFTER", e.ErrIncorrectEnvVariable)
	}

	return &KafkaCfg{
		Brokers:            brokers,
		Topic:              getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:         partitions,
		ReplicationFactor:  replicationFactor,
		NetworkMode:        getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		OutboxBatchSize:    batchSize,
		OutboxPollInterval: pollInterval,
		OutboxStaleAfter:   staleAfter,
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL       = false
		defaultPublicRead   = true
		defaultEndpoint     = "minio:9000"
		defaultBucket       = "product-images"
		defaultSignedURLTTL = 7 * 24 * time.Hour
		defaultMaxImageSize = 15 << 20
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	publicRead, err := strconv.ParseBool(getEnvOrDefault("MINIO_PUBLIC_READ", strconv.FormatBool(defaultPublicRead)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_PUBLIC_READ")
		return nil, err
	}

	signedURLTTL, err := parseDurationEnv("SIGNED_URL_TTL", defaultSignedURLTTL)
	if err != nil {
		log.Errorf(err, "invalid SIGNED_URL_TTL")
		return nil, err
	}
	// S3 SigV4 не подписывает ссылки дольше чем на 7 дней
	if signedURLTTL > defaultSignedURLTTL || signedURLTTL <= 0 {
		log.Warnf("SIGNED_URL_TTL %v is out of range, using %v", signedURLTTL, defaultSignedURLTTL)
		signedURLTTL = defaultSignedURLTTL
	}

	endpoint := getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint)
	scheme := "http"
	if useSSL {
		scheme = "https"
	}

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		MinioRegion:       getEnvOrDefault("MINIO_REGION", "us-east-1"),
		PublicRead:        publicRead,
		PublicBaseURL:     strings.TrimRight(getEnvOrDefault("MINIO_PUBLIC_BASE_URL", scheme+"://"+endpoint), "/"),
		SignedURLTTL:      signedURLTTL,
		MaxImageSize:      defaultMaxImageSize,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort           = "8080"
		defaultReadTimeout    = 5 * time.Second
		defaultWriteTimeout   = 5 * time.Minute
		defaultIdleTimeout    = 60 * time.Second
		defaultRequestTimeout = 5 * time.Minute
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	// пакетный импорт выполняется синхронно в рамках запроса
	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	requestTimeout, err := parseDurationEnv("HTTP_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_REQUEST_TIMEOUT")
		return nil, err
	}

	return &HTTPConfig{
		Port:           port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		RequestTimeout: requestTimeout,
		SwaggerURL:     getEnvOrDefault("SWAGGER_URL", "http://localhost:"+port+"/swagger/doc.json"),
		AllowedOrigins: splitCSV(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost           = "localhost"
		defaultPort           = "5432"
		defaultSSLMode        = "disable"
		defaultMaxConns       = 10
		defaultConnectTimeout = 5 * time.Second
		defaultMigrations     = "db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	maxConns, err := parseIntEnv("POSTGRES_MAX_CONNS", defaultMaxConns)
	if err != nil || maxConns <= 0 {
		log.Errorf(err, "invalid POSTGRES_MAX_CONNS")
		return nil, e.Wrap("POSTGRES_MAX_CONNS", e.ErrIncorrectEnvVariable)
	}

	connectTimeout, err := parseDurationEnv("POSTGRES_CONNECT_TIMEOUT", defaultConnectTimeout)
	if err != nil {
		log.Errorf(err, "invalid POSTGRES_CONNECT_TIMEOUT")
		return nil, err
	}

	return &PGDBCfg{
		Host:           getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:           getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:           user,
		Password:       password,
		DBName:         dbName,
		SSLMode:        getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MaxConns:       int32(maxConns),
		ConnectTimeout: connectTimeout,
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrations),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
	}, nil
}

func loadAuthCfg(log logger.Logger) (*AuthCfg, error) {
	const defaultTimeout = 5 * time.Second

	url := getEnv("AUTH_URL")
	if url == "" {
		err := fmt.Errorf("AUTH_URL is required")
		log.Errorf(err, "missing AUTH_URL")
		return nil, err
	}

	timeout, err := parseDurationEnv("AUTH_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid AUTH_TIMEOUT")
		return nil, err
	}

	return &AuthCfg{
		URL:     strings.TrimRight(url, "/"),
		APIKey:  getEnv("AUTH_API_KEY"),
		Timeout: timeout,
	}, nil
}

func loadScraperCfg(log logger.Logger) (*ScraperCfg, error) {
	const (
		defaultUserAgent = "SupplierImportsBot/1.0 (+product metadata importer)"
		defaultTimeout   = 15 * time.Second
		defaultRPS       = 2.0
		defaultBurst     = 4
	)

	timeout, err := parseDurationEnv("SCRAPER_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid SCRAPER_TIMEOUT")
		return nil, err
	}

	rps, err := strconv.ParseFloat(getEnvOrDefault("SCRAPER_RPS", strconv.FormatFloat(defaultRPS, 'f', -1, 64)), 64)
	if err != nil || rps <= 0 {
		log.Errorf(err, "invalid SCRAPER_RPS")
		return nil, e.ErrIncorrectEnvVariable
	}

	burst, err := parseIntEnv("SCRAPER_BURST", defaultBurst)
	if err != nil || burst <= 0 {
		log.Errorf(err, "invalid SCRAPER_BURST")
		return nil, e.ErrIncorrectEnvVariable
	}

	return &ScraperCfg{
		UserAgent: getEnvOrDefault("SCRAPER_USER_AGENT", defaultUserAgent),
		Timeout:   timeout,
		RPS:       rps,
		Burst:     burst,
	}, nil
}

func loadImportCfg(log logger.Logger) (*ImportCfg, error) {
	const (
		defaultFetchCacheTTL = 10 * time.Minute
		defaultLockTTL       = 30 * time.Second
	)

	fetchCacheTTL, err := parseDurationEnv("FETCH_CACHE_TTL", defaultFetchCacheTTL)
	if err != nil {
		log.Errorf(err, "invalid FETCH_CACHE_TTL")
		return nil, err
	}

	lockTTL, err := parseDurationEnv("IMPORT_LOCK_TTL", defaultLockTTL)
	if err != nil {
		log.Errorf(err, "invalid IMPORT_LOCK_TTL")
		return nil, err
	}

	return &ImportCfg{
		FetchCacheTTL: fetchCacheTTL,
		LockTTL:       lockTTL,
	}, nil
}

func loadProvidersCfg() *ProvidersCfg {
	return &ProvidersCfg{
		AlibabaAPIKey:    getEnv("ALIBABA_API_KEY"),
		AliExpressAPIKey: getEnv("ALIEXPRESS_API_KEY"),
		JumiaAPIKey:      getEnv("JUMIA_API_KEY"),
	}
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
