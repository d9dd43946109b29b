package commonModels

type DocChunk struct {
	Content string `json:"content"`
	Source  string `json:"source"`
	PageNum int    `json:"page_num"`
	//SequenceIndex is strictly increasing within a document and becomes the point id
	SequenceIndex int `json:"sequence_index"`
}

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)
