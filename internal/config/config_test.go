package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRequiredFiles(t *testing.T, dir string) {
	t.Helper()
	for _, name := range []string{
		ParaformerEncoder, ParaformerDecoder, ParaformerTokens,
		SenseVoiceModel, SenseVoiceTokens, VADModel,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("stub"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestValidateSucceedsWithAllFilesPresent(t *testing.T) {
	dir := t.TempDir()
	writeRequiredFiles(t, dir)
	c := Config{ModelDir: dir, Language: "en"}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateFailsOnMissingFile(t *testing.T) {
	dir := t.TempDir()
	c := Config{ModelDir: dir}
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for missing model files")
	}
}

func TestValidateRejectsBadLanguageTag(t *testing.T) {
	dir := t.TempDir()
	writeRequiredFiles(t, dir)
	c := Config{ModelDir: dir, Language: "not-a-real-tag-!!"}
	if err := c.Validate(); err == nil {
		t.Fatal("expected an error for an invalid BCP-47 tag")
	}
}

func TestModelsExist(t *testing.T) {
	dir := t.TempDir()
	c := Config{ModelDir: dir}
	if c.ModelsExist() {
		t.Fatal("ModelsExist() = true on an empty directory")
	}
	writeRequiredFiles(t, dir)
	if !c.ModelsExist() {
		t.Fatal("ModelsExist() = false with all required files present")
	}
}
