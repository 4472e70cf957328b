package document

import (
	"strings"
)

type Kind string

const (
	KindText       Kind = "text"
	KindPDF        Kind = "pdf"
	KindImage      Kind = "image"
	KindWord       Kind = "word"
	KindExcel      Kind = "excel"
	KindPowerPoint Kind = "powerpoint"
	KindGeneric    Kind = "generic"
)

// Classify decides how a file is processed. The first matching rule wins:
// text (text/* or .txt), .pdf, image/*, .doc(x), .xls(x), .ppt(x), anything else.
func Classify(fileName, fileType string) Kind {
	name := strings.ToLower(fileName)
	mime := strings.ToLower(fileType)

	switch {
	case strings.Contains(mime, "text/") || strings.HasSuffix(name, ".txt"):
		return KindText
	case strings.HasSuffix(name, ".pdf"):
		return KindPDF
	case strings.Contains(mime, "image/"):
		return KindImage
	case strings.HasSuffix(name, ".docx") || strings.HasSuffix(name, ".doc"):
		return KindWord
	case strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls"):
		return KindExcel
	case strings.HasSuffix(name, ".pptx") || strings.HasSuffix(name, ".ppt"):
		return KindPowerPoint
	default:
		return KindGeneric
	}
}

// placeholder describes the files whose content cannot be read here.
func placeholder(kind Kind, fileName, fileType string) string {
	switch kind {
	case KindPDF:
		return "PDF Document: " + fileName + "\nThis PDF contains structured academic information that needs to be processed for student queries."
	case KindWord:
		return "Word Document: " + fileName + "\nThis Microsoft Word document contains detailed academic information, possibly including tables, lists, and formatted content."
	case KindExcel:
		return "Excel Document: " + fileName + "\nThis spreadsheet contains structured data in tabular format, possibly including timetables, contact lists, or academic schedules."
	case KindPowerPoint:
		return "PowerPoint Document: " + fileName + "\nThis presentation contains slides with academic information, possibly including visual elements, bullet points, and structured content."
	default:
		return "Document: " + fileName + "\nFile type: " + fileType + "\nThis document contains information relevant to the college and academic queries."
	}
}
