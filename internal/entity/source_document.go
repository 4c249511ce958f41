package entity

// SourceDocument is one uploaded PDF. It is not modified after upload.
type SourceDocument struct {
	Filename string
	Data     []byte
}

// Size returns the byte length of the upload.
func (d SourceDocument) Size() int {
	return len(d.Data)
}
