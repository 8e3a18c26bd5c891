package truefinals

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/Cornell-University-Combat-Robotics/nhrl-app/internal/usecase"
)

// Extractor turns a rendered bracket page into raw match entries. It is an
// interface because the traversal is coupled to the page's markup, which
// changes without notice; tests and future layouts swap the implementation.
type Extractor interface {
	Extract(r io.Reader) ([]usecase.RawMatch, error)
}

// BracketExtractor walks the bracket markup. Each game is a button whose id
// starts with "game"; inside it a header row carries the cage label and time
// text, and two slots each carry an entrant name plus a win-marker string
// ("0" while undecided, "W" on the winning side).
type BracketExtractor struct {
	competition string
}

func NewBracketExtractor(competition string) *BracketExtractor {
	return &BracketExtractor{competition: strings.TrimSpace(competition)}
}

func (e *BracketExtractor) Extract(r io.Reader) ([]usecase.RawMatch, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bracket page: %w", err)
	}

	var out []usecase.RawMatch
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "button" && strings.HasPrefix(attr(n, "id"), "game") {
			if raw, ok := e.extractGame(n); ok {
				out = append(out, raw)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func (e *BracketExtractor) extractGame(game *html.Node) (usecase.RawMatch, bool) {
	slots := findSlots(game)
	if len(slots) < 2 {
		return usecase.RawMatch{}, false
	}

	nameA, markerA := extractSlot(slots[0])
	nameB, markerB := extractSlot(slots[1])
	if nameA == "" || nameB == "" {
		return usecase.RawMatch{}, false
	}

	return usecase.RawMatch{
		Source:      SourceName,
		EntrantA:    nameA,
		EntrantB:    nameB,
		WinMarkerA:  markerA,
		WinMarkerB:  markerB,
		CageLabel:   findClassText(game, "skew-x"),
		TimeText:    findClassText(game, "bottom-[3px]"),
		Competition: e.competition,
	}, true
}

func findSlots(game *html.Node) []*html.Node {
	var slots []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.HasPrefix(attr(n, "id"), "slot") {
			slots = append(slots, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(game)
	return slots
}

// extractSlot reads one entrant slot: the first text leaf is the name, the
// last distinct one is the win marker.
func extractSlot(slot *html.Node) (name, marker string) {
	leaves := textLeaves(slot)
	if len(leaves) == 0 {
		return "", ""
	}
	name = leaves[0]
	if len(leaves) > 1 {
		marker = leaves[len(leaves)-1]
	}
	return name, marker
}

func textLeaves(n *html.Node) []string {
	var out []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if text := strings.TrimSpace(node.Data); text != "" {
				out = append(out, text)
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// findClassText returns the text of the first element whose class attribute
// contains the given fragment.
func findClassText(n *html.Node, classFragment string) string {
	var found string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if found != "" {
			return
		}
		if node.Type == html.ElementNode && strings.Contains(attr(node, "class"), classFragment) {
			leaves := textLeaves(node)
			if len(leaves) > 0 {
				found = leaves[0]
				return
			}
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
