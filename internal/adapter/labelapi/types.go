package labelapi

import "encoding/json"

// RawOCRData carries the low-level recognition output of the OCR stage.
type RawOCRData struct {
	RecTexts          []string  `json:"rec_texts"`
	Boxes             [][][]int `json:"boxes"`
	Confidences       []float64 `json:"confidences"`
	AverageConfidence float64   `json:"average_confidence"`
	Language          string    `json:"language"`
	TotalLines        int       `json:"total_lines"`
}

// OCRResult is the response of the /ocr endpoint.
type OCRResult struct {
	Filename string      `json:"filename"`
	Language string      `json:"language"`
	Texts    []string    `json:"texts"`
	RawData  *RawOCRData `json:"raw_data,omitempty"`
}

// StructureRequest is the body of the /structure endpoint.
type StructureRequest struct {
	Language string   `json:"language"`
	Texts    []string `json:"texts"`
}

// TranslateRequest is the body of the /translate endpoint. Data is the
// structured document produced by the structuring stage, passed through
// opaquely.
type TranslateRequest struct {
	Language      string          `json:"language"`
	Data          json.RawMessage `json:"data"`
	TargetCountry string          `json:"target_country"`
}

// TranslateResult is the response of the /translate endpoint.
type TranslateResult struct {
	SourceLanguage string          `json:"source_language"`
	TargetCountry  string          `json:"target_country"`
	Data           json.RawMessage `json:"data"`
}

// HTMLRequest is the body of the /generate-html endpoint.
type HTMLRequest struct {
	Country string          `json:"country"`
	Data    json.RawMessage `json:"data"`
}

// PipelineResult is the response of the composite /process endpoint.
type PipelineResult struct {
	OCRResult      *OCRResult         `json:"ocr_result,omitempty"`
	StructuredData json.RawMessage    `json:"structured_data,omitempty"`
	TranslatedData *TranslateResult   `json:"translated_data,omitempty"`
	HTMLOutput     string             `json:"html_output,omitempty"`
	ProcessingTime map[string]float64 `json:"processing_time,omitempty"`
}

// Upload is an image file forwarded to the remote service. Filename and
// ContentType are preserved as received from the caller.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// BatchItem pairs an upload with the identifier of the item it belongs to.
type BatchItem struct {
	ItemID string
	Upload Upload
}

// BatchResult is the outcome of one item within a batch call. Err is set
// when that item's call failed; the batch continues past failures.
type BatchResult struct {
	ItemID string
	Result *PipelineResult
	Err    error
}
