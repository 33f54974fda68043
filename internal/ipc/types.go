// Package ipc connects secondary processes to the primary instance via
// JSON-RPC over a unix domain socket: redirected launches are forwarded to
// the aggregator and session commands are driven against the command surface.
package ipc

// ForwardRequest carries one redirected launch: the argv of the secondary
// process and its intent ("compression" or "decompression").
type ForwardRequest struct {
	Args   []string `json:"args"`
	Intent string   `json:"intent"`
}

// ForwardResponse acknowledges that the primary accepted the launch.
type ForwardResponse struct {
	Accepted bool `json:"accepted"`
}

// CompressRequest asks the session to compress a batch into one archive.
type CompressRequest struct {
	Sources     []string `json:"sources"`
	Destination string   `json:"destination"`
	Kind        string   `json:"kind"`
}

// CompressResponse carries the success message of a finished compress job.
type CompressResponse struct {
	Message string `json:"message"`
}

// DecompressRequest asks the session to extract a batch of archives.
type DecompressRequest struct {
	Sources []string `json:"sources"`
}

// DecompressResponse carries the success message of a finished decompress job.
type DecompressResponse struct {
	Message string `json:"message"`
}

// KindsRequest asks for the supported compression kinds.
type KindsRequest struct{}

// KindsResponse lists the supported compression kind tags.
type KindsResponse struct {
	Kinds []string `json:"kinds"`
}

// ValidateRequest asks whether a kind accepts a batch of the given size.
type ValidateRequest struct {
	Sources []string `json:"sources"`
	Kind    string   `json:"kind"`
}

// ValidateResponse reports the validation verdict.
type ValidateResponse struct {
	Valid bool `json:"valid"`
}

// AcknowledgeRequest reports the client's processed-item count.
type AcknowledgeRequest struct {
	Count int64 `json:"count"`
}

// AcknowledgeResponse confirms the count was stored.
type AcknowledgeResponse struct {
	Accepted bool `json:"accepted"`
}

// OpenFolderRequest asks the session to reveal a path in the file manager.
type OpenFolderRequest struct {
	Path string `json:"path"`
}

// OpenFolderResponse confirms the file manager was invoked.
type OpenFolderResponse struct {
	Opened bool `json:"opened"`
}

// CloseRequest asks the session to terminate every application instance.
type CloseRequest struct{}

// CloseResponse reports how many processes were terminated.
type CloseResponse struct {
	Killed int `json:"killed"`
}
