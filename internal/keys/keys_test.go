package keys

import (
	"regexp"
	"strings"
	"testing"
)

func TestPrimaryKey(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		id       string
		parentID string
		wantPK   string
		wantSK   string
	}{
		{"institution anchors its partition", Institution, "INST-a1b2c3d4", "", "INSTITUCION#INST-a1b2c3d4", "METADATA"},
		{"institution ignores parent", Institution, "INST-a1b2c3d4", "INST-other", "INSTITUCION#INST-a1b2c3d4", "METADATA"},
		{"program under institution", Program, "PRG-e5f6g7h8", "INST-a1b2c3d4", "INSTITUCION#INST-a1b2c3d4", "PROGRAMA#PRG-e5f6g7h8"},
		{"project under institution", Project, "PRY-00000001", "INST-a1b2c3d4", "INSTITUCION#INST-a1b2c3d4", "PROYECTO#PRY-00000001"},
		{"procedure under institution", Procedure, "TRM-00000002", "INST-a1b2c3d4", "INSTITUCION#INST-a1b2c3d4", "TRAMITE#TRM-00000002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pk, sk := PrimaryKey(tt.kind, tt.id, tt.parentID)
			if pk != tt.wantPK {
				t.Errorf("PK = %q, want %q", pk, tt.wantPK)
			}
			if sk != tt.wantSK {
				t.Errorf("SK = %q, want %q", sk, tt.wantSK)
			}
		})
	}
}

func TestIndexKey(t *testing.T) {
	tests := []struct {
		kind   Kind
		id     string
		wantPK string
		wantSK string
	}{
		{Institution, "INST-1", "INSTITUCIONES", "INSTITUCION#INST-1"},
		{Program, "PRG-1", "PROGRAMA#PRG-1", "METADATA"},
		{Project, "PRY-1", "PROYECTO#PRY-1", "METADATA"},
		{Procedure, "TRM-1", "TRAMITE#TRM-1", "METADATA"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			pk, sk := IndexKey(tt.kind, tt.id)
			if pk != tt.wantPK || sk != tt.wantSK {
				t.Errorf("IndexKey(%v, %q) = (%q, %q), want (%q, %q)", tt.kind, tt.id, pk, sk, tt.wantPK, tt.wantSK)
			}
		})
	}
}

func TestIndexKey_UniquePerInstitution(t *testing.T) {
	_, a := IndexKey(Institution, "INST-a")
	_, b := IndexKey(Institution, "INST-b")
	if a == b {
		t.Errorf("expected distinct GSI1SK for distinct institutions, both were %q", a)
	}
}

func TestTags_NoPrefixCollisions(t *testing.T) {
	all := Kinds()
	for _, a := range all {
		if a.Tag() == "" || !strings.HasSuffix(a.Tag(), "#") {
			t.Errorf("%v: tag %q must be non-empty and end with #", a, a.Tag())
		}
		if strings.HasPrefix(Metadata, a.Tag()) || strings.HasPrefix(a.Tag(), Metadata) {
			t.Errorf("%v: tag %q collides with %q", a, a.Tag(), Metadata)
		}
		for _, b := range all {
			if a == b {
				continue
			}
			if strings.HasPrefix(a.Tag(), b.Tag()) {
				t.Errorf("tag %q is prefixed by %q", a.Tag(), b.Tag())
			}
		}
	}
}

func TestBelongsToType(t *testing.T) {
	tests := []struct {
		key  string
		kind Kind
		want bool
	}{
		{"PROGRAMA#PRG-1", Program, true},
		{"PROGRAMA#PRG-1", Project, false},
		{"PROYECTO#PRY-1", Project, true},
		{"TRAMITE#TRM-1", Procedure, true},
		{"METADATA", Institution, false},
		{"METADATA", Program, false},
		{"", Program, false},
		{"PROGRAMA#PRG-1", Kind(99), false},
	}

	for _, tt := range tests {
		if got := BelongsToType(tt.key, tt.kind); got != tt.want {
			t.Errorf("BelongsToType(%q, %v) = %v, want %v", tt.key, tt.kind, got, tt.want)
		}
	}
}

func TestParseRef(t *testing.T) {
	kind, id, ok := ParseRef("INSTITUCION#INST-a1b2c3d4")
	if !ok || kind != Institution || id != "INST-a1b2c3d4" {
		t.Errorf("ParseRef = (%v, %q, %v), want (institucion, INST-a1b2c3d4, true)", kind, id, ok)
	}

	for _, bad := range []string{"", "METADATA", "INSTITUCION#", "UNKNOWN#x", "PROGRAMA#a#b"} {
		if _, _, ok := ParseRef(bad); ok {
			t.Errorf("ParseRef(%q) should fail", bad)
		}
	}
}

func TestNewID(t *testing.T) {
	patterns := map[Kind]*regexp.Regexp{
		Institution: regexp.MustCompile(`^INST-[0-9a-f]{8}$`),
		Program:     regexp.MustCompile(`^PRG-[0-9a-f]{8}$`),
		Project:     regexp.MustCompile(`^PRY-[0-9a-f]{8}$`),
		Procedure:   regexp.MustCompile(`^TRM-[0-9a-f]{8}$`),
	}

	for kind, re := range patterns {
		id := NewID(kind)
		if !re.MatchString(id) {
			t.Errorf("NewID(%v) = %q, does not match %s", kind, id, re)
		}
	}

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewID(Program)
		if seen[id] {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}

func TestKind_Metadata(t *testing.T) {
	if Program.Parent() != Institution {
		t.Errorf("expected Program parent to be Institution")
	}
	if Institution.Parent() != 0 {
		t.Errorf("expected Institution to have no parent")
	}
	if Procedure.IDAttr() != "id_tramite" {
		t.Errorf("expected id_tramite, got %q", Procedure.IDAttr())
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("expected unknown kind name")
	}
}
