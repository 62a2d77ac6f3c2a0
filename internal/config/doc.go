// Package config loads the vstore command's configuration.
//
// Configuration lives in vstore.toml, vstore.yaml or vstore.yml in the
// working directory (or the file given with --config). Every field has a
// default, so the file is optional.
//
// # Configuration File Structure
//
//	log_level = "info"
//	codec = "json"
//
//	[storage]
//	backend = "sqlite"     # memory, file, sqlite, s3, remote
//	prefix = "app:"
//	dir = ".vstore"        # file
//	dsn = "vstore.db"      # sqlite
//	table = "vstore_items" # sqlite
//	bucket = "my-bucket"   # s3
//	s3_prefix = "vstore/"  # s3
//	region = "us-east-1"   # s3
//	url = "http://localhost:8080" # remote
//
//	[serve]
//	addr = ":8080"
//	metrics_path = "/metrics"
//
// Unknown keys are rejected, and parse errors point at the offending line.
package config
