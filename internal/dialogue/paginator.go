package dialogue

import "github.com/kapu/carfinder-bot-go/internal/util"

// Paginator walks an ordered option list page by page. The index always stays
// within [0, Total()-1]; turning past either end is a no-op.
type Paginator struct {
	options  []string
	pageSize int
	index    int
}

func NewPaginator(options []string, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = 1
	}
	return &Paginator{options: options, pageSize: pageSize}
}

// Total is ceil(len(options) / pageSize).
func (p *Paginator) Total() int {
	return util.CeilDiv(len(p.options), p.pageSize)
}

func (p *Paginator) Index() int {
	return p.index
}

// Page returns the options visible on the current page.
func (p *Paginator) Page() []string {
	start := p.start()
	end := util.Clamp(start+p.pageSize, start, len(p.options))
	return p.options[start:end]
}

// Next moves forward one page and reports whether the index changed.
func (p *Paginator) Next() bool {
	return p.moveTo(p.index + 1)
}

// Prev moves back one page and reports whether the index changed.
func (p *Paginator) Prev() bool {
	return p.moveTo(p.index - 1)
}

// Match resolves text against the full option list, not only the visible
// page. Only a case-insensitive match on the trimmed text counts.
func (p *Paginator) Match(text string) (string, bool) {
	needle := util.Normalize(text)
	if needle == "" {
		return "", false
	}
	for _, opt := range p.options {
		if util.Normalize(opt) == needle {
			return opt, true
		}
	}
	return "", false
}

func (p *Paginator) start() int {
	return p.index * p.pageSize
}

func (p *Paginator) moveTo(index int) bool {
	total := p.Total()
	if total == 0 {
		return false
	}
	index = util.Clamp(index, 0, total-1)
	if index == p.index {
		return false
	}
	p.index = index
	return true
}
