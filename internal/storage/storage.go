package storage

// AuditStore keeps a copy of every image submitted for analysis so a bad
// extraction can be replayed later. Implementations must tolerate being nil
// at the call site: audit storage is optional.
type AuditStore interface {
	SaveImage(data []byte, contentType string) (string, error)
	DeleteImage(name string) error
}
