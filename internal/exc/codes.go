package exc

const (
	CodeUnknownFatal = "S0000"
	// Lexical.
	CodeUnknownToken  = "S0001"
	CodeInvalidNumber = "S0002"
	// Syntax.
	CodeUnexpectedToken   = "S0003"
	CodeUnexpectedEOF     = "S0004"
	CodeKeywordNotAllowed = "S0005"
	CodeNumberNotAllowed  = "S0006"
	CodeNotInteger        = "S0007"
	CodeUnsupported       = "S0008"
	// Interval validation.
	CodeIntervalNegative     = "S0009"
	CodeIntervalEmpty        = "S0010"
	CodeIntervalOverlap      = "S0011"
	CodeIntervalPastMaturity = "S0012"
	CodeIntervalInvalidMode  = "S0013"
	// Schema and encoding.
	CodeSchemaError = "S0014"
)
