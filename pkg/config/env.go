package config

const EnvPrefix = "RXCART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv              = "RXCART_APP_ENV"
	EnvPort                = "RXCART_APP_PORT"
	EnvDBDSN               = "RXCART_DB_DSN"
	EnvDBHost              = "RXCART_DB_HOST"
	EnvDBUser              = "RXCART_DB_USER"
	EnvDBName              = "RXCART_DB_NAME"
	EnvRedisURL            = "RXCART_REDIS_URL"
	EnvJWTSecret           = "RXCART_JWT_SECRET"
	EnvJWTIssuer           = "RXCART_JWT_ISSUER"
	EnvCheckoutDeliveryFee = "RXCART_CHECKOUT_DELIVERY_FEE"
	EnvRazorpayKeyID       = "RXCART_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret   = "RXCART_RAZORPAY_KEY_SECRET"
	EnvSMTPHost            = "RXCART_SMTP_HOST"
	EnvNotificationsMax    = "RXCART_NOTIFICATIONS_MAX_ATTEMPTS"
)

var dsnPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
