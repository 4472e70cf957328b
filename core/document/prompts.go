package document

import "fmt"

const (
	structureSystem = "You are an expert document processing assistant specializing in academic and institutional " +
		"document analysis. Preserve layout, structure, and extract key information accurately."

	ocrSystem = "You are an OCR specialist for academic documents. Extract all text accurately, preserve table " +
		"structures, maintain formatting, and support multiple languages. Describe any charts, diagrams, or visual elements."

	ocrPrompt = `Please perform OCR on this image and extract all text content. Pay special attention to:
1. Tables and structured data: preserve column/row alignment
2. Timetables and schedules: maintain time formatting
3. Contact lists: extract names, phone numbers, emails
4. Event announcements: preserve dates and details
5. Any non-English text: preserve original languages
6. Visual elements: describe charts, diagrams, or images

Format the output clearly with appropriate headings and maintain the document's structure.`
)

func structurePrompt(content, fileType, fileName string) string {
	return fmt.Sprintf(`Analyze the following document content and extract structured information with layout preservation. Pay special attention to:

1. Tables, timetables, and structured data: preserve formatting
2. Event lists and schedules: maintain chronological order
3. Contact information: extract names, roles, phone numbers, emails
4. Department information: locations, faculty, resources
5. Academic programs and courses
6. Multilingual content: preserve all languages
7. Images and visual elements: describe their content and context

Document: %s
Type: %s
Content: %s

Provide a comprehensive, well-structured extraction that preserves the document's layout and hierarchy. Use clear sections with headings and keep tabular data readable.`, fileName, fileType, content)
}

func imageNoKeyText(fileName string) string {
	return "Image Document: " + fileName + "\nContent: This image contains visual information relevant to the college. " +
		"OCR processing is not available without a vision API key."
}

func imageFailedText(fileName string) string {
	return "Image Document: " + fileName + "\nContent: This image contains visual information but OCR processing failed."
}

func imageNoTextText(fileName string) string {
	return "Image Document: " + fileName + "\nContent: This image contains visual information but no text was extracted."
}

func imageText(fileName, extracted string) string {
	return "Image Document: " + fileName + "\n\nExtracted Content:\n" + extracted
}
