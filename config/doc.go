// Package config loads the bot configuration from a YAML file.
//
// Every setting has a default, so an empty file (or none) is a working
// configuration apart from the Telegram token. Secrets are usually supplied
// through DEPOSITBOT_TELEGRAM_TOKEN and DEPOSITBOT_LLM_TOKEN rather than the
// file.
package config
