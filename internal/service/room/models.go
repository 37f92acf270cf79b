package room

type Participant struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	IsHost      bool   `json:"is_host"`
	IsMuted     bool   `json:"is_muted"`
	IsHostMuted bool   `json:"is_host_muted"`
	IsSpeaking  bool   `json:"is_speaking"`
}

type Player struct {
	IsPlaying     bool    `json:"is_playing"`
	CurrentTime   float64 `json:"current_time"`
	PlaybackRate  float64 `json:"playback_rate"`
	SubtitleIndex int     `json:"subtitle_index"`
	UpdatedAt     int64   `json:"updated_at"`
}

type Content struct {
	ContentType string `json:"content_type"`
	ContentId   string `json:"content_id"`
	EpisodeId   string `json:"episode_id,omitempty"`
	Title       string `json:"title"`
	PosterUrl   string `json:"poster_url"`
}

type ChatMessage struct {
	Id        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type Reaction struct {
	Id    string `json:"id"`
	Emoji string `json:"emoji"`
}
