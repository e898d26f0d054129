package segment

import (
	"reflect"
	"strings"
	"testing"
)

const chapter = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" xml:lang="ja">
<head><title>第一章</title><link rel="stylesheet" href="../style/book.css" type="text/css"/></head>
<body class="p-text">
<h1 class="title">第一章　出発</h1>
<div class="main">
  <p>  こんにちは  </p>
  <p><br/></p>
  <p>アリスは<ruby>王都<rt>おうと</rt></ruby>へ&amp;行った。</p>
  <blockquote><p>引用文</p></blockquote>
  <p class="img"><img src="../images/cover.png" alt=""/></p>
</div>
<h2>見出し<p>入れ子</p></h2>
</body>
</html>
`

func TestTexts(t *testing.T) {
	got := Texts([]byte(chapter))
	want := []string{"第一章　出発", "こんにちは", "アリスは王都おうとへ&行った。", "引用文", "入れ子"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Texts() =\n%q\nwant\n%q", got, want)
	}
}

func TestTexts_Stable(t *testing.T) {
	first := Texts([]byte(chapter))
	second := Texts(Parse([]byte(chapter)).Render())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("segmentation changed across runs:\n%q\n%q", first, second)
	}
}

func TestRender_NoReplacementIsIdentity(t *testing.T) {
	inputs := []string{
		chapter,
		"",
		"plain text only",
		"<p>unclosed paragraph",
		"<p>a<p>b</div></p>",
		"<svg xmlns=\"http://www.w3.org/2000/svg\"><image href=\"x.jpg\"/></svg>",
		"<p>broken <b attr='x",
	}
	for _, in := range inputs {
		if got := string(Parse([]byte(in)).Render()); got != in {
			t.Errorf("Render() changed input:\n got %q\nwant %q", got, in)
		}
	}
}

func TestRender_ReplaceLeaf(t *testing.T) {
	d := Parse([]byte(chapter))
	leaves := d.Leaves()
	leaves[1].Replace("你好")
	leaves[2].Replace("愛麗絲前往<王都>&。")

	if !d.Modified() {
		t.Fatal("expected document to be modified")
	}
	out := string(d.Render())

	if !strings.Contains(out, "<p>你好</p>") {
		t.Errorf("replacement missing:\n%s", out)
	}
	if !strings.Contains(out, "<p>愛麗絲前往&lt;王都&gt;&amp;。</p>") {
		t.Errorf("replacement not escaped:\n%s", out)
	}
	if strings.Contains(out, "<ruby>") {
		t.Error("inner markup of replaced leaf should be gone")
	}

	for _, keep := range []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<link rel="stylesheet" href="../style/book.css" type="text/css"/>`,
		`<h1 class="title">第一章　出発</h1>`,
		`<p><br/></p>`,
		`<blockquote><p>引用文</p></blockquote>`,
		`<img src="../images/cover.png" alt=""/>`,
	} {
		if !strings.Contains(out, keep) {
			t.Errorf("expected %q to be preserved", keep)
		}
	}

	if got := Texts([]byte(out)); got[1] != "你好" || got[0] != "第一章　出発" {
		t.Errorf("unexpected texts after render: %q", got)
	}
}

func TestRender_ImplicitlyClosedLeaf(t *testing.T) {
	in := "<div><p>one</div><p>two</p>"
	d := Parse([]byte(in))
	leaves := d.Leaves()
	if len(leaves) != 2 {
		t.Fatalf("expected 2 leaves, got %d", len(leaves))
	}
	leaves[0].Replace("ONE")
	if got := string(d.Render()); got != "<div><p>ONE</div><p>two</p>" {
		t.Errorf("Render() = %q", got)
	}
}

func TestParse_ContainerSkipped(t *testing.T) {
	d := Parse([]byte(`<p>outer<div>inner</div></p><h3><blockquote>q</blockquote></h3><h4>ok</h4>`))
	var texts []string
	for _, l := range d.Leaves() {
		texts = append(texts, l.Text())
	}
	if !reflect.DeepEqual(texts, []string{"ok"}) {
		t.Errorf("unexpected leaves %q", texts)
	}
}

func TestTexts_SelfClosingRawTextElements(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"title", `<html><head><title/></head><body><p>こんにちは</p><p>さようなら</p></body></html>`},
		{"script", `<html><head><script src="a.js" type="text/javascript"/></head><body><p>こんにちは</p><p>さようなら</p></body></html>`},
		{"style", `<html><head><style type="text/css"/></head><body><p>こんにちは</p><p>さようなら</p></body></html>`},
	}
	want := []string{"こんにちは", "さようなら"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Texts([]byte(tt.in)); !reflect.DeepEqual(got, want) {
				t.Errorf("Texts() = %q, want %q", got, want)
			}
			if got := string(Parse([]byte(tt.in)).Render()); got != tt.in {
				t.Errorf("Render() changed input:\n got %q\nwant %q", got, tt.in)
			}
		})
	}
}
