package models

// ConvertRequest is the JSON body posted to the conversion endpoint.
type ConvertRequest struct {
	MarkdownContent string `json:"markdown_content"`
	ApplyFormatting bool   `json:"apply_formatting"`
	AutoAdjustWidth bool   `json:"auto_adjust_width"`
}

// ConvertResponse is the decoded conversion endpoint reply.
// Successful replies carry the workbook as base64 in ExcelData.
type ConvertResponse struct {
	Success        bool     `json:"success" msgpack:"success"`
	TablesFound    int      `json:"tables_found,omitempty" msgpack:"tables_found,omitempty"`
	Warnings       []string `json:"warnings,omitempty" msgpack:"warnings,omitempty"`
	ExcelData      string   `json:"excel_data,omitempty" msgpack:"excel_data,omitempty"`
	ProcessingTime float64  `json:"processing_time,omitempty" msgpack:"processing_time,omitempty"`
	Errors         []string `json:"errors,omitempty" msgpack:"errors,omitempty"`
	Error          string   `json:"error,omitempty" msgpack:"error,omitempty"`
}

// Failures returns the server-reported error messages.
func (r *ConvertResponse) Failures() []string {
	out := make([]string, 0, len(r.Errors)+1)
	out = append(out, r.Errors...)
	if r.Error != "" {
		out = append(out, r.Error)
	}
	return out
}
