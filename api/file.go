package api

// FileType distinguishes externally linked files from files hosted by Notion.
type FileType string

const (
	FileExternal FileType = "external"
	FileHosted   FileType = "file"
)

// File is a file object, as found in files properties, media blocks, page
// covers and icons.
type File struct {
	Name     string      `json:"name,omitempty"`
	Type     FileType    `json:"type"`
	External *FileURL    `json:"external,omitempty"`
	File     *HostedFile `json:"file,omitempty"`
}

// FileURL is the payload of an external file.
type FileURL struct {
	URL string `json:"url"`
}

// HostedFile is the payload of a Notion-hosted file. Its URL is signed and
// stops working after ExpiryTime.
type HostedFile struct {
	URL        string    `json:"url"`
	ExpiryTime Timestamp `json:"expiry_time,omitempty"`
}

// ExternalFile links url as a file called name.
func ExternalFile(name, url string) File {
	return File{Name: name, Type: FileExternal, External: &FileURL{URL: url}}
}

// URL returns the download location of the file.
func (f File) URL() string {
	switch {
	case f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

// Icon is a page, database or callout icon: an emoji or a file.
type Icon struct {
	Type     string      `json:"type"`
	Emoji    string      `json:"emoji,omitempty"`
	External *FileURL    `json:"external,omitempty"`
	File     *HostedFile `json:"file,omitempty"`
}

// EmojiIcon returns an emoji icon.
func EmojiIcon(emoji string) *Icon { return &Icon{Type: "emoji", Emoji: emoji} }

func (i *Icon) String() string {
	if i == nil {
		return ""
	}
	switch {
	case i.Emoji != "":
		return i.Emoji
	case i.External != nil:
		return i.External.URL
	case i.File != nil:
		return i.File.URL
	}
	return ""
}
