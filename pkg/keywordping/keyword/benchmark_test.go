package keyword

import "testing"

// BenchmarkCompile_Plain benchmarks compiling a plain keyword.
func BenchmarkCompile_Plain(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Compile("deployment")
	}
}

// BenchmarkCompile_Regex benchmarks compiling a scoped expression.
func BenchmarkCompile_Regex(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Compile("#123:/deploy(ed|ing)?\\s+to\\s+prod/i")
	}
}

// BenchmarkCompileAll benchmarks rebuilding a typical keyword list.
func BenchmarkCompileAll(b *testing.B) {
	raws := []string{
		"hello", "/^bye$/i", "@alice:urgent", "#555:release",
		"777:outage", "on call", "/p[0-9]+ incident/i", "c++",
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CompileAll(raws)
	}
}

// BenchmarkPattern_MatchString_NoMatch benchmarks a miss on a long message.
func BenchmarkPattern_MatchString_NoMatch(b *testing.B) {
	p, err := Compile("deployment")
	if err != nil {
		b.Fatalf("Compile: %v", err)
	}
	msg := string(make([]byte, 2000)) + " nothing to see here"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.MatchString(msg)
	}
}
