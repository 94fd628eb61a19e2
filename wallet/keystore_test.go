package wallet

import (
	"testing"
)

func TestKeystoreSaveLoad(t *testing.T) {
	km, err := NewKeystoreManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWallet()
	if err != nil {
		t.Fatal(err)
	}

	path, err := km.Save(w, "correct horse")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := km.Load(path, "correct horse")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Address() != w.Address() {
		t.Errorf("loaded address = %s, want %s", loaded.Address().Hex(), w.Address().Hex())
	}

	if _, err := km.Load(path, "wrong password"); err == nil {
		t.Error("expected error with wrong password")
	}

	files, err := km.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 1 {
		t.Errorf("List() returned %d files, want 1", len(files))
	}
}

// TestLoadKeystoreFile 直接按路径解密，不经过目录管理器
func TestLoadKeystoreFile(t *testing.T) {
	dir := t.TempDir()
	km, err := NewKeystoreManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	w, err := NewWallet()
	if err != nil {
		t.Fatal(err)
	}

	path, err := km.Save(w, "correct horse")
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadKeystoreFile(path, "correct horse")
	if err != nil {
		t.Fatalf("LoadKeystoreFile() error = %v", err)
	}
	if loaded.Address() != w.Address() {
		t.Errorf("loaded address = %s, want %s", loaded.Address().Hex(), w.Address().Hex())
	}

	if _, err := LoadKeystoreFile(path+".missing", "correct horse"); err == nil {
		t.Error("expected error for missing file")
	}
}
