package pictemplate

// DocumentInfo holds the metadata declared on the <mxfile> container.
type DocumentInfo struct {
	Host     string // editor that saved the file, e.g. "app.diagrams.net"
	Modified string
	Agent    string
	Version  string // editor version
	Type     string
	// Pages is the number of pages actually decoded, which may differ from
	// the "pages" attribute written by the editor.
	Pages int
}

func readDocumentInfo(root *node) DocumentInfo {
	var info DocumentInfo
	info.Host, _ = root.attr("host")
	info.Modified, _ = root.attr("modified")
	info.Agent, _ = root.attr("agent")
	info.Version, _ = root.attr("version")
	info.Type, _ = root.attr("type")
	return info
}
