// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Values are resolved in increasing order of precedence:
//
//	1. Default() values
//	2. YAML file: IBEX_CONFIG_FILE, config.yaml or configs/config.yaml
//	3. .env file in the working directory (joho/godotenv)
//	4. Environment variables with the IBEX_ prefix (kelseyhightower/envconfig)
//
// Variables already set in the process environment are never overwritten by
// the .env file.
//
// # Environment Variables
//
// Nested sections map to underscored names:
//
//	IBEX_SERVER_PORT=8080
//	IBEX_DATA_SOURCE_FILE=/srv/data/precios_cierre_bolsa.csv
//	IBEX_DATA_REFRESH_SCHEDULE="@every 1m"
//	IBEX_DATA_JOURNAL_PATH=/srv/data/loads.db
//	IBEX_LOGGING_LEVEL=debug
//	IBEX_SECURITY_ADMIN_TOKEN_HASH='$2a$10$...'
//
// Validation failures are returned as CONFIG application errors.
package config
