package types

// ServerConfig holds every launch option for the managed llama-server
// process. JSON keys match the on-disk settings document, so files written
// by earlier builds of the tool remain loadable.
type ServerConfig struct {
	// Path to the llama-server executable.
	// example: /usr/local/bin/llama-server
	BinaryPath string `json:"binary_path" example:"/usr/local/bin/llama-server"`
	// Path to the GGUF model file passed via -m.
	// example: /models/tinyllama-q4.gguf
	ModelPath string `json:"model_path" example:"/models/tinyllama-q4.gguf"`
	// Host/interface the server binds to.
	// example: 127.0.0.1
	Host string `json:"host" example:"127.0.0.1"`
	// TCP port the server listens on.
	// example: 8080
	Port int `json:"port" example:"8080"`
	// Context window size passed via -c. Zero omits the flag.
	// example: 2048
	CtxSize int `json:"context" example:"2048"`
	// Number of layers offloaded to the GPU via -ngl. Zero omits the flag.
	// example: 33
	GPULayers int `json:"ngl" example:"33"`
	// Worker thread count passed via -t. Zero omits the flag.
	// example: 8
	Threads int `json:"threads" example:"8"`
	// Batch size passed via -b. Zero omits the flag.
	// example: 512
	BatchSize int `json:"batch" example:"512"`
	// Extra arguments appended verbatim after the known flags. Tokenized
	// shell-style (quotes group, nothing is ever run through a shell).
	// example: --mlock --verbose
	ExtraArgs string `json:"additional_args" example:"--mlock --verbose"`
	// Start the server automatically when the controller boots.
	// example: false
	AutoStart bool `json:"auto_start" example:"false"`
}
