package call

// MediaType determines which kind of media a content carries.
type MediaType int

const (
	// MediaTypeAudio indicates an audio content.
	MediaTypeAudio MediaType = iota + 1

	// MediaTypeVideo indicates a video content.
	MediaTypeVideo
)

const (
	mediaTypeAudioStr = "audio"
	mediaTypeVideoStr = "video"
)

// NewMediaType builds a MediaType from its canonical string.
func NewMediaType(raw string) (MediaType, error) {
	switch raw {
	case mediaTypeAudioStr:
		return MediaTypeAudio, nil
	case mediaTypeVideoStr:
		return MediaTypeVideo, nil
	default:
		return MediaType(0), ErrUnknownType
	}
}

func (t MediaType) String() string {
	switch t {
	case MediaTypeAudio:
		return mediaTypeAudioStr
	case MediaTypeVideo:
		return mediaTypeVideoStr
	default:
		return ErrUnknownType.Error()
	}
}
