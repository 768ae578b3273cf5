// Package hocr reads text lines out of hOCR documents, the HTML dialect
// Tesseract and other engines use to report layout.
package hocr

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// lineClasses are the hOCR classes Tesseract uses for a line of text.
var lineClasses = []string{"ocr_line", "ocr_header", "ocr_caption", "ocr_textfloat"}

// Line is one hOCR text line.
type Line struct {
	// Text is the words of the line joined by single spaces.
	Text string

	// BBox is the line bounding box in image pixels.
	BBox image.Rectangle

	// Confidence is the mean word confidence in [0, 1].
	// Lines without word confidences report 0.
	Confidence float64
}

// Parse extracts the text lines of an hOCR document in document order.
// Lines without words are skipped.
func Parse(r io.Reader) ([]Line, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	var lines []Line
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, lineClasses...) {
			if line, ok := parseLine(n); ok {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return lines, nil
}

// parseLine reads the bbox of a line element and the words below it.
func parseLine(n *html.Node) (Line, bool) {
	props := titleProps(getAttr(n, "title"))
	bbox, ok := parseBBox(props["bbox"])
	if !ok {
		return Line{}, false
	}

	var words []string
	var confSum float64
	var confCount int
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.ElementNode && hasClass(c, "ocrx_word") {
			text := strings.TrimSpace(textContent(c))
			if text == "" {
				return
			}
			words = append(words, text)
			wordProps := titleProps(getAttr(c, "title"))
			if conf, err := strconv.ParseFloat(wordProps["x_wconf"], 64); err == nil {
				confSum += conf
				confCount++
			}
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)

	if len(words) == 0 {
		return Line{}, false
	}

	line := Line{Text: strings.Join(words, " "), BBox: bbox}
	if confCount > 0 {
		line.Confidence = confSum / float64(confCount) / 100
	}
	return line, true
}

// titleProps splits an hOCR title attribute ("bbox 1 2 3 4; x_wconf 95")
// into property name and value.
func titleProps(title string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(title, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(part), " ")
		if name != "" {
			props[name] = strings.TrimSpace(value)
		}
	}
	return props
}

// parseBBox parses "x0 y0 x1 y1".
func parseBBox(s string) (image.Rectangle, bool) {
	fields := strings.Fields(s)
	if len(fields) != 4 {
		return image.Rectangle{}, false
	}
	var v [4]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return image.Rectangle{}, false
		}
		v[i] = n
	}
	return image.Rect(v[0], v[1], v[2], v[3]), true
}

func hasClass(n *html.Node, classes ...string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		for _, want := range classes {
			if c == want {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			walk(cc)
		}
	}
	walk(n)
	return sb.String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
