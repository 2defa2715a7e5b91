package game

// PluginInfo is what the plugin-inspection library reports for one file:
// the declared masters in header order, the header flags, the FormIDs, the
// file CRC and the raw description field.
type PluginInfo struct {
	Masters     []string
	FormIDs     []uint32
	CRC         uint32
	Description string
	IsMaster    bool
	IsLight     bool
	IsEmpty     bool
}

// PluginReader inspects plugin files. Parsing the record-based binary
// format is delegated to an external library behind this interface; a
// failure to open or decode a file surfaces as a FileAccessError.
type PluginReader interface {
	ReadPlugin(path string) (*PluginInfo, error)
}
