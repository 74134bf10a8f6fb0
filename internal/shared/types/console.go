package types

// ConsoleInterface define a interface para saída no console.
type ConsoleInterface interface {
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle

	CreateTable() TableInterface
	DisplaySavingsBars(title string, bars []SavingsBar)

	ProgressWithTotal(title string, total int) ProgressHandle
}

// StatusHandle é uma interface para atualizar uma mensagem de status.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// ProgressHandle é uma interface para atualizar uma barra de progresso.
// Implementações devem aceitar chamadas concorrentes.
type ProgressHandle interface {
	Increment(title string)
	Stop()
}

// TableInterface define a interface para criar e manipular tabelas.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// SavingsBar is one line of the savings chart. Amount is already formatted;
// Ratio in [0, 1] only sizes the bar.
type SavingsBar struct {
	Label  string
	Amount string
	Ratio  float64
}
