package entity

// Artifact is one file of a run directory.
type Artifact struct {
	Name string
	Data []byte
}

// Run agrupa tudo o que será publicado num diretório de execução.
type Run struct {
	ID        string
	Artifacts []Artifact
}
