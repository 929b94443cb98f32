package output

// Stage names a step of an acquisition or install.
type Stage string

// Stages emitted by the pipeline.
const (
	StageStarting         Stage = "starting"
	StagePreparing        Stage = "preparing"
	StageDownloading      Stage = "downloading"
	StageDownloadingCore  Stage = "downloading_core"
	StageDownloadingCores Stage = "downloading_cores"
	StageExtracting       Stage = "extracting"
	StageExtractingCores  Stage = "extracting_cores"
	StageFindingRom       Stage = "finding_rom"
	StageRomFound         Stage = "rom_found"
	StagePreparingRom     Stage = "preparing_rom"
	StageDownloadingCover Stage = "downloading_cover"
	StageCopying          Stage = "copying"
	StageCompleted        Stage = "completed"
)

// Artifact keys used for shared downloads.
const (
	KeyCoresPack = "cores_pack"
	KeyRetroArch = "retroarch"
	KeyAllCores  = "install_all_cores"
)

// CoreKey returns the artifact key for a single core install.
func CoreKey(id string) string {
	return "core:" + id
}

// Event is a single progress notification for one artifact.
type Event struct {
	Key           string  `json:"slug"`
	Stage         Stage   `json:"stage"`
	Progress      float64 `json:"progress"`
	Message       string  `json:"message"`
	BytesReceived int64   `json:"bytesReceived,omitempty"`
	TotalBytes    int64   `json:"totalBytes,omitempty"`
	SpeedBps      float64 `json:"speedBps,omitempty"`
}

// Sink receives progress events. Emit must not block for long.
type Sink interface {
	Emit(ev Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ev Event)

// Emit calls fn(ev).
func (fn SinkFunc) Emit(ev Event) {
	fn(ev)
}

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(Event) {}) //nolint:gochecknoglobals

// Emit sends ev to sink, tolerating a nil sink.
func Emit(sink Sink, key string, stage Stage, progress float64, message string) {
	if sink == nil {
		return
	}
	sink.Emit(Event{Key: key, Stage: stage, Progress: progress, Message: message})
}
