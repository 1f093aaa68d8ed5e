package layout

// TableStyle 描述表格的底色、网格与单元格内边距。
type TableStyle struct {
	HeaderBackground Color
	Background       Color
	Grid             Color
	GridWidth        float64
	PadX             float64
	PadY             float64
}

// Table 使用等宽列；行高取该行最高单元格加上下内边距，只按整行拆分。
type Table struct {
	// Header 为可选的表头行；拆分后的续表不重复表头。
	Header []Flowable
	Rows   [][]Flowable
	Style  TableStyle

	cache   measureCache
	heights []float64
}

var _ Flowable = (*Table)(nil)

func (t *Table) kind() string { return "table" }

func (t *Table) columns() int {
	n := len(t.Header)
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// allRows 返回含表头在内的全部行。
func (t *Table) allRows() [][]Flowable {
	if len(t.Header) == 0 {
		return t.Rows
	}
	rows := make([][]Flowable, 0, len(t.Rows)+1)
	rows = append(rows, t.Header)
	return append(rows, t.Rows...)
}

func (t *Table) cellWidth(width float64) float64 {
	cols := t.columns()
	if cols == 0 {
		return 0
	}
	w := width/float64(cols) - 2*t.Style.PadX
	if w < 1 {
		w = 1
	}
	return w
}

// Measure 返回所有行高之和。
func (t *Table) Measure(width float64) float64 {
	if h, ok := t.cache.get(width); ok {
		return h
	}
	cw := t.cellWidth(width)
	rows := t.allRows()
	t.heights = make([]float64, len(rows))
	total := 0.0
	for i, row := range rows {
		rh := 0.0
		for _, cell := range row {
			if cell == nil {
				continue
			}
			if h := cell.Measure(cw); h > rh {
				rh = h
			}
		}
		t.heights[i] = rh + 2*t.Style.PadY
		total += t.heights[i]
	}
	return t.cache.put(width, total)
}

// fitRows 返回能放进 height 的前缀行数（含表头）。
func (t *Table) fitRows(width, height float64) int {
	t.Measure(width)
	used := 0.0
	for i, h := range t.heights {
		if used+h > height {
			return i
		}
		used += h
	}
	return len(t.heights)
}

// Split 在整行边界拆分；只剩表头能放下时返回 Defer。
func (t *Table) Split(width, height float64) Split {
	if t.Measure(width) <= height {
		return Split{Outcome: Whole}
	}
	k := t.fitRows(width, height)
	body := k
	if len(t.Header) > 0 {
		body = k - 1
	}
	if body < 1 {
		return Split{Outcome: Defer}
	}
	first := &Table{Header: t.Header, Rows: t.Rows[:body], Style: t.Style}
	rest := &Table{Rows: t.Rows[body:], Style: t.Style}
	return Split{Outcome: Parts, First: first, Rest: rest}
}

// truncate 保留放得下的行，其余行组成续表返回。
// 第一行数据本身就放不下时，把它的每个单元格截断到剩余高度；行不跨页，单元格的剩余部分被丢弃。
func (t *Table) truncate(width, height float64) (Flowable, Flowable) {
	if len(t.Rows) == 0 {
		return t, nil
	}
	k := t.fitRows(width, height)
	body := k
	if len(t.Header) > 0 {
		body = k - 1
	}
	var head *Table
	if body < 1 {
		avail := height - 2*t.Style.PadY
		if len(t.Header) > 0 {
			avail -= t.heights[0]
		}
		cw := t.cellWidth(width)
		row := make([]Flowable, len(t.Rows[0]))
		for i, cell := range t.Rows[0] {
			if cell != nil {
				row[i], _ = cell.truncate(cw, max(avail, 0))
			}
		}
		head = &Table{Header: t.Header, Rows: [][]Flowable{row}, Style: t.Style}
		body = 1
	} else {
		body = min(body, len(t.Rows))
		head = &Table{Header: t.Header, Rows: t.Rows[:body], Style: t.Style}
	}
	if body >= len(t.Rows) {
		return head, nil
	}
	return head, &Table{Rows: t.Rows[body:], Style: t.Style}
}

// Render 自上而下绘制每一行：底色、单元格内容、网格线。
func (t *Table) Render(c Canvas, x, y float64) {
	width := t.cache.width
	h := t.Measure(width)
	cols := t.columns()
	if cols == 0 {
		return
	}
	colW := width / float64(cols)
	cw := t.cellWidth(width)
	s := t.Style
	top := y + h
	for i, row := range t.allRows() {
		rh := t.heights[i]
		rowY := top - rh
		bg := s.Background
		if i == 0 && len(t.Header) > 0 {
			bg = s.HeaderBackground
		}
		c.FillRect(x, rowY, width, rh, bg)
		for col, cell := range row {
			if cell == nil {
				continue
			}
			ch := cell.Measure(cw)
			cell.Render(c, x+float64(col)*colW+s.PadX, top-s.PadY-ch)
		}
		c.Line(x, top, x+width, top, s.GridWidth, s.Grid)
		top = rowY
	}
	c.Line(x, y, x+width, y, s.GridWidth, s.Grid)
	for col := 0; col <= cols; col++ {
		cx := x + float64(col)*colW
		c.Line(cx, y, cx, y+h, s.GridWidth, s.Grid)
	}
}
