package config

const (
	MaxUploadBytes     = 16 * 1024 * 1024 // 16MB, matches the dashboard upload cap
	MaxFrameBytes      = 5 * 1024 * 1024  // 5MB
	MaxUploadFrames    = 500
	MaxTemplateBytes   = 64 * 1024
	MaxJSONBodyBytes   = 1 * 1024 * 1024
	MaxMultipartMemory = 32 << 20
	MaxOutputTokens    = 1000
)
