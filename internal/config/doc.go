// Package config loads and validates the postd YAML configuration.
//
// Configuration files may reference environment variables with ${VAR_NAME}
// syntax; unset variables expand to the empty string. Example:
//
//	server:
//	  http_addr: ":8080"
//	database:
//	  path: ${HOME}/.local/share/postd/posts.db
//	broker:
//	  buffer_size: 64
//	logging:
//	  level: info
//	  format: text
package config
