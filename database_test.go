package kdbx

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/kdbxvault/kdbx/pkg/keystream"
	"github.com/kdbxvault/kdbx/pkg/uuids"
)

func xorWithKeystream(plain []byte, ks *keystream.Reader) []byte {
	stream := ks.NextBytes(len(plain))
	out := make([]byte, len(plain))
	for i := range out {
		out[i] = plain[i] ^ stream[i]
	}
	return out
}

func TestLoadXMLGroupAndEntry(t *testing.T) {
	fieldKey := []byte("a field protection key, 32+ bytes long")
	writeKS := keystream.New(fieldKey)
	cipherC := xorWithKeystream([]byte("c"), writeKS)

	rootUUID, err := uuids.New4(nil)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}
	entryUUID, err := uuids.New4(nil)
	if err != nil {
		t.Fatalf("New4: %v", err)
	}

	doc := `<KeePassFile>
  <Meta>
    <DatabaseName>abcdefg</DatabaseName>
  </Meta>
  <Root>
    <Group>
      <UUID>` + rootUUID.Base64() + `</UUID>
      <Name>Root</Name>
      <Entry>
        <UUID>` + entryUUID.Base64() + `</UUID>
        <String><Key>Title</Key><Value>a</Value></String>
        <String><Key>UserName</Key><Value>b</Value></String>
        <String><Key>Password</Key><Value Protected="True">` +
		base64.StdEncoding.EncodeToString(cipherC) + `</Value></String>
      </Entry>
    </Group>
  </Root>
</KeePassFile>`

	readKS := keystream.New(fieldKey)
	db, err := LoadXML([]byte(doc), readKS)
	if err != nil {
		t.Fatalf("LoadXML: %v", err)
	}
	if db.Name != "abcdefg" {
		t.Errorf("Name = %q, want abcdefg", db.Name)
	}
	if len(db.Groups) != 1 {
		t.Fatalf("len(Groups) = %d, want 1", len(db.Groups))
	}
	g := db.Groups[0]
	if g.Name != "Root" {
		t.Errorf("group Name = %q, want Root", g.Name)
	}
	if g.UUID != rootUUID {
		t.Error("group UUID did not round trip")
	}
	if len(g.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(g.Entries))
	}
	e := g.Entries[0]
	if e.UUID != entryUUID {
		t.Error("entry UUID did not round trip")
	}
	if got := e.Strings["Title"].Reveal(); got != "a" {
		t.Errorf("Title = %q, want a", got)
	}
	if got := e.Strings["UserName"].Reveal(); got != "b" {
		t.Errorf("UserName = %q, want b", got)
	}
	if got := e.Password.Reveal(); got != "c" {
		t.Errorf("Password = %q, want c", got)
	}

	pw, ok := db.GetPassword(entryUUID)
	if !ok {
		t.Fatal("GetPassword: entry not found")
	}
	if pw != "c" {
		t.Errorf("GetPassword = %q, want c", pw)
	}

	var zero uuids.UUID
	if _, ok := db.GetPassword(zero); ok {
		t.Error("GetPassword unexpectedly found an entry for the zero UUID")
	}
}

func TestLoadXMLNestedGroupsAndHistory(t *testing.T) {
	parentUUID, _ := uuids.New4(nil)
	childUUID, _ := uuids.New4(nil)
	entryUUID, _ := uuids.New4(nil)

	doc := `<KeePassFile>
  <Meta><DatabaseName>nested</DatabaseName></Meta>
  <Root>
    <Group>
      <UUID>` + parentUUID.Base64() + `</UUID>
      <Name>Parent</Name>
      <Group>
        <UUID>` + childUUID.Base64() + `</UUID>
        <Name>Child</Name>
        <Entry>
          <UUID>` + entryUUID.Base64() + `</UUID>
          <String><Key>Title</Key><Value>current</Value></String>
          <History>
            <Entry>
              <String><Key>Title</Key><Value>old</Value></String>
            </Entry>
          </History>
        </Entry>
      </Group>
    </Group>
  </Root>
</KeePassFile>`

	db, err := LoadXML([]byte(doc), nil)
	if err != nil {
		t.Fatalf("LoadXML: %v", err)
	}
	parent := db.Groups[0]
	if len(parent.Groups) != 1 {
		t.Fatalf("len(parent.Groups) = %d, want 1", len(parent.Groups))
	}
	child := parent.Groups[0]
	if child.Name != "Child" {
		t.Errorf("child.Name = %q, want Child", child.Name)
	}
	if len(child.Entries) != 1 {
		t.Fatalf("len(child.Entries) = %d, want 1", len(child.Entries))
	}
	e := child.Entries[0]
	if got := e.Strings["Title"].Reveal(); got != "current" {
		t.Errorf("Title = %q, want current", got)
	}
	if len(e.History) != 1 {
		t.Fatalf("len(History) = %d, want 1", len(e.History))
	}
	if got := e.History[0].Strings["Title"].Reveal(); got != "old" {
		t.Errorf("History[0].Title = %q, want old", got)
	}
}

func TestLoadXMLEmptyDatabaseRejected(t *testing.T) {
	doc := `<KeePassFile><Meta></Meta><Root></Root></KeePassFile>`
	if _, err := LoadXML([]byte(doc), nil); err == nil {
		t.Fatal("expected an error for a database with no name and no groups")
	}
}

func TestLoadXMLMissingRootElementRejected(t *testing.T) {
	doc := `<NotAKeePassFile></NotAKeePassFile>`
	if _, err := LoadXML([]byte(doc), nil); err == nil {
		t.Fatal("expected an error for a document with no KeePassFile root")
	}
}

func TestLoadXMLCustomIcons(t *testing.T) {
	iconUUID, _ := uuids.New4(nil)
	data := []byte{1, 2, 3, 4}
	doc := `<KeePassFile>
  <Meta>
    <DatabaseName>icons</DatabaseName>
    <CustomIcons>
      <Icon>
        <UUID>` + iconUUID.Base64() + `</UUID>
        <Data>` + base64.StdEncoding.EncodeToString(data) + `</Data>
      </Icon>
    </CustomIcons>
  </Meta>
  <Root></Root>
</KeePassFile>`
	db, err := LoadXML([]byte(doc), nil)
	if err != nil {
		t.Fatalf("LoadXML: %v", err)
	}
	got, ok := db.CustomIcons[iconUUID]
	if !ok {
		t.Fatal("expected custom icon to be present")
	}
	if strings.Compare(string(got), string(data)) != 0 {
		t.Errorf("icon data = %v, want %v", got, data)
	}
}
