package urls

// ExternalControl is Roku's External Control Protocol reference
const ExternalControl = "https://developer.roku.com/docs/developer-program/dev-tools/external-control-api.md"

// KeyValues lists the key names accepted by keypress, keydown and keyup
const KeyValues = ExternalControl + "#keypress-key-values"
