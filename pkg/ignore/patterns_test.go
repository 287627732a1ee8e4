package ignore

import "testing"

func newTestMatcher() *Matcher {
	return NewMatcher(DefaultAllowExtensions())
}

func TestIsEligible_BinaryExtensionRejected(t *testing.T) {
	m := newTestMatcher()
	if m.IsEligible("assets/logo.png") {
		t.Fatal("expected logo.png to be rejected")
	}
}

func TestIsEligible_CaseInsensitiveExtension(t *testing.T) {
	m := newTestMatcher()
	if !m.IsEligible("src/lib.Rs") {
		t.Fatal("expected lib.Rs to be accepted case-insensitively")
	}
}

func TestIsEligible_ReadmeFamilyAccepted(t *testing.T) {
	m := newTestMatcher()
	if !m.IsEligible("README") {
		t.Fatal("expected extension-less README to be accepted")
	}
	if !m.IsEligible("LICENSE") {
		t.Fatal("expected extension-less LICENSE to be accepted")
	}
}

func TestIsEligible_ReadmeWithUnknownExtensionRejected(t *testing.T) {
	m := newTestMatcher()
	if m.IsEligible("README.bak") {
		t.Fatal("expected README.bak to be rejected")
	}
}

func TestIsEligible_RejectedDirectories(t *testing.T) {
	m := newTestMatcher()
	cases := []string{
		"project/target/debug/main.rs",
		"repo/.git/HEAD",
		"repo/node_modules/left-pad/index.js",
		"repo/vendor/lib/x.go",
		"repo/.fastembed_cache/model.bin",
		"repo/debug/trace.py",
	}
	for _, c := range cases {
		if m.IsEligible(c) {
			t.Fatalf("expected %q to be rejected", c)
		}
	}
}

func TestIsEligible_SystemFilesRejected(t *testing.T) {
	m := newTestMatcher()
	if m.IsEligible(".DS_Store") || m.IsEligible("Thumbs.db") || m.IsEligible("desktop.ini") {
		t.Fatal("expected system files to be rejected")
	}
}

func TestIsEligible_UnknownExtensionRejected(t *testing.T) {
	m := newTestMatcher()
	if m.IsEligible("notes.xyzxyz") {
		t.Fatal("expected an extension outside the allow-list to be rejected")
	}
}
