package constant

// Content types understood by the engine selection.
const (
	MimeHLS  = "application/x-mpegURL"
	MimeDASH = "application/dash+xml"
	MimeMP4  = "video/mp4"
	MimeWebM = "video/webm"
	MimeMP3  = "audio/mpeg"
)

// CastNamespace is the application message channel used by the cast receiver.
const CastNamespace = "urn:x-cast:com.vidplay.cast"
