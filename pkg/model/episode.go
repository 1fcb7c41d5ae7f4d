package model

// Attachment is an auxiliary file downloaded next to the episode audio
type Attachment struct {
	URL      string
	FileName string
}

// ResolvedEpisode is an episode record with a download URL and the file names derived from it
type ResolvedEpisode struct {
	Record    *EpisodeRecord
	URL       string
	Extension string
	// BaseName is "{publish date} {title}" before sanitizing
	BaseName string
	// FileName is the sanitized audio file name, it's the key of the archive entry
	FileName string
	// MetaName is the sanitized sidecar JSON file name
	MetaName    string
	Attachments []Attachment
}
