package pipeline

// Story is one researched news item ready for scripting.
type Story struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	SourceURL   string   `json:"source_url"`
	PublishedAt string   `json:"published_at"`
	Keywords    []string `json:"keywords"`
}

// Line is one narration line in a script.
type Line struct {
	Index     int    `json:"index"`
	Narration string `json:"narration"`
	Mood      string `json:"mood"` // hook | tense | reveal | closing
}

// Script is the structured narration for one video.
type Script struct {
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
	Lines   []Line `json:"lines"`
}

// UploadResult identifies a published video.
type UploadResult struct {
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
}
