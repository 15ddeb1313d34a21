// Package config loads the amortizer service configuration from YAML.
//
// Example config.yaml:
//
//	server:
//	  host: 127.0.0.1
//	  port: 8080
//	  port_fallback: true      # bind any free port when 8080 is taken
//	  shutdown_timeout: 10s
//	rate_limit:
//	  capacity: 60             # requests per client per refill window
//	  refill: 1m
//	cache:
//	  backend: redis           # memory | redis | none
//	  addr_env: REDIS_ADDR
//	  ttl: 10m
//	limits:
//	  max_loan_amount: 1000000000
//	  max_interest_rate: 1000
//	  max_term_months: 600
//	log:
//	  level: info
//	  format: json
//
// The rate_limit and limits sections are re-applied when the file changes
// (see Watch). Server and cache settings take effect on restart only.
package config
