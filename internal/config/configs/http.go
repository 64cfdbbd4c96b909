package configs

// HTTP configures the ledger API server. Only the listen port is
// configurable; the server binds all interfaces, which is what the
// containerised deployments expect.
type HTTP struct {
	// Port is read from HTTP_PORT. Defaults to 8080.
	Port uint16 `env:"PORT" envDefault:"8080"`
}
