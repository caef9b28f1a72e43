package main

// ProcessingStatus represents the outcome status of processing a source
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusSkipped ProcessingStatus = "skipped"
	StatusError   ProcessingStatus = "error"
)

// ProcessingResult tracks the outcome of processing each source
type ProcessingResult struct {
	Source   string
	Status   ProcessingStatus
	Filename string
	Headline string
	Avatar   string
	Reason   string
	Error    error
}

// SourceItem is one entry of a sources list file
type SourceItem struct {
	Source string `yaml:"source"`
}

// SourceList is the YAML structure of a sources list file
type SourceList struct {
	Items []SourceItem `yaml:"items"`
}
