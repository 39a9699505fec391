package cli

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vocadex/vocadex/internal/config"
	"github.com/vocadex/vocadex/internal/database"
	"github.com/vocadex/vocadex/internal/database/words"
	"github.com/vocadex/vocadex/internal/entities"
)

// Expected column order in import files:
// word, part of speech, definition (EN), definition (ZH), phonetic, example.
// Only the first column is mandatory.

// WordsImportCommand handles bulk-importing words from an xlsx or csv file.
type WordsImportCommand struct {
	FilePath     string
	DatabasePath string
	SheetName    string
	SkipHeader   bool
	Verbose      bool
	DryRun       bool
}

// ImportResult holds the outcome of an import run.
type ImportResult struct {
	Processed int
	Created   int
	Skipped   int
	Errors    []string
}

func NewWordsImportCommand() *WordsImportCommand {
	return &WordsImportCommand{}
}

func (cmd *WordsImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the .xlsx or .csv file to import (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.SheetName, "sheet", "Sheet1", "Sheet name for xlsx files")
	fs.BoolVar(&cmd.SkipHeader, "skip-header", true, "Treat the first row as a header")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import words from a spreadsheet into the local collection.\n\n")
		fmt.Fprintf(os.Stderr, "Expected columns: word, part of speech, definition (EN),\n")
		fmt.Fprintf(os.Stderr, "definition (ZH), phonetic, example. Only the word is required.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import -file words.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import -file words.csv -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *WordsImportCommand) Run() error {
	fmt.Println("Words Import")
	fmt.Println("============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	if _, err := os.Stat(cmd.FilePath); os.IsNotExist(err) {
		return fmt.Errorf("import file not found: %s", cmd.FilePath)
	}

	fmt.Printf("File: %s\n", cmd.FilePath)

	rows, err := cmd.readRows()
	if err != nil {
		return err
	}

	if cmd.SkipHeader && len(rows) > 0 {
		rows = rows[1:]
	}

	inputs := cmd.parseRows(rows)
	if len(inputs) == 0 {
		fmt.Println("No words found in import file")
		return nil
	}

	fmt.Printf("Found %d words\n", len(inputs))

	if cmd.DryRun {
		if cmd.Verbose {
			for i, in := range inputs {
				fmt.Printf("%d. %s (%s)\n", i+1, in.Word, in.PartOfSpeech)
			}
		}
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	fmt.Printf("\nSaving to database: %s\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := words.NewRepository(db.DB)
	result := importWords(repo, inputs, cmd.Verbose)

	fmt.Printf("\nImported %d of %d words (%d already present)\n",
		result.Created, result.Processed, result.Skipped)
	for _, msg := range result.Errors {
		fmt.Printf("  error: %s\n", msg)
	}

	return nil
}

// readRows loads the file as a string grid, dispatching on extension.
func (cmd *WordsImportCommand) readRows() ([][]string, error) {
	if strings.EqualFold(filepath.Ext(cmd.FilePath), ".csv") {
		return cmd.readCSV()
	}
	return cmd.readExcel()
}

func (cmd *WordsImportCommand) readExcel() ([][]string, error) {
	f, err := excelize.OpenFile(cmd.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cmd.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", cmd.SheetName, err)
	}
	return rows, nil
}

func (cmd *WordsImportCommand) readCSV() ([][]string, error) {
	f, err := os.Open(cmd.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// parseRows converts the grid into entry inputs, dropping blank rows.
func (cmd *WordsImportCommand) parseRows(rows [][]string) []words.NewEntryInput {
	col := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var inputs []words.NewEntryInput
	for _, row := range rows {
		word := col(row, 0)
		if word == "" {
			continue
		}
		inputs = append(inputs, words.NewEntryInput{
			Word:         word,
			PartOfSpeech: col(row, 1),
			DefinitionEN: col(row, 2),
			DefinitionZH: col(row, 3),
			Phonetic:     col(row, 4),
			Example:      col(row, 5),
		})
	}
	return inputs
}

func importWords(repo *words.Repository, inputs []words.NewEntryInput, verbose bool) ImportResult {
	result := ImportResult{}
	for _, in := range inputs {
		result.Processed++

		existing, err := repo.GetByID(entities.EntryID(in.Word, in.PartOfSpeech))
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", in.Word, err))
			continue
		}
		if existing != nil {
			result.Skipped++
			if verbose {
				fmt.Printf("  skip %s (already present)\n", in.Word)
			}
			continue
		}

		if _, err := repo.Add(in); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", in.Word, err))
			continue
		}
		result.Created++
		if verbose {
			fmt.Printf("  add %s\n", in.Word)
		}
	}
	return result
}
