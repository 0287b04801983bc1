package shell

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/anakievah/pdb/internal/table"
)

// Parse errors.
var (
	ErrSyntax         = errors.New("syntax error")
	ErrUnknownCommand = errors.New("unknown command")
)

// Op names a shell command.
type Op string

const (
	OpCreateTable Op = "create_table"
	OpListTables  Op = "list_tables"
	OpDropTable   Op = "drop_table"
	OpInsert      Op = "insert"
	OpSelect      Op = "select"
	OpUpdate      Op = "update"
	OpDelete      Op = "delete"
	OpInfo        Op = "info"
	OpHelp        Op = "help"
	OpExit        Op = "exit"
)

// Command is a parsed command line.
type Command struct {
	Op      Op
	Table   string
	Columns []string        // create_table column specs
	Values  []string        // insert values, unquoted but not yet coerced
	Set     map[string]any  // update assignments
	Where   table.Predicate // nil when the command has no where clause
}

var integerLiteral = regexp.MustCompile(`^-?[0-9]+$`)

// ParseLiteral converts a bare word to a typed value: true/false in any case
// become bool, optionally signed digits become int64, anything else stays a
// string. Quoted text never reaches here and is always a string.
func ParseLiteral(word string) any {
	switch strings.ToLower(word) {
	case "true":
		return true
	case "false":
		return false
	}
	if integerLiteral.MatchString(word) {
		if n, err := strconv.ParseInt(word, 10, 64); err == nil {
			return n
		}
	}
	return word
}

// Parse turns a command line into a Command. Keywords are case-insensitive;
// table and column names are not.
func Parse(line string) (Command, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return Command{}, err
	}
	if len(tokens) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrSyntax)
	}

	p := &parser{tokens: tokens}
	head := p.next()
	if head.Kind != TokenWord {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Text)
	}

	var cmd Command
	switch op := Op(strings.ToLower(head.Text)); op {
	case OpCreateTable:
		cmd, err = p.createTable()
	case OpListTables, OpHelp, OpExit:
		cmd = Command{Op: op}
	case OpDropTable:
		cmd, err = p.named(OpDropTable)
	case OpInfo:
		cmd, err = p.named(OpInfo)
	case OpInsert:
		cmd, err = p.insert()
	case OpSelect:
		cmd, err = p.selectFrom()
	case OpUpdate:
		cmd, err = p.update()
	case OpDelete:
		cmd, err = p.deleteFrom()
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Text)
	}
	if err != nil {
		return Command{}, err
	}

	if !p.done() {
		return Command{}, fmt.Errorf("%w: unexpected %q after %s", ErrSyntax, p.peek().Text, cmd.Op)
	}
	return cmd, nil
}

// ParseAssignment parses a single "<col>=<value>" using the same literal
// rules as command lines, so name="42" is a string and age=42 an integer.
func ParseAssignment(s string) (string, any, error) {
	tokens, err := Tokenize(s)
	if err != nil {
		return "", nil, err
	}
	p := &parser{tokens: tokens}
	col, v, err := p.assignment()
	if err != nil {
		return "", nil, err
	}
	if !p.done() {
		return "", nil, fmt.Errorf("%w: unexpected %q after %s=", ErrSyntax, p.peek().Text, col)
	}
	return col, v, nil
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() Token {
	if p.done() {
		return Token{}
	}
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.peek()
	if !p.done() {
		p.pos++
	}
	return t
}

// isKeyword reports whether the next token is the bare word kw.
func (p *parser) isKeyword(kw string) bool {
	t := p.peek()
	return !p.done() && t.Kind == TokenWord && strings.EqualFold(t.Text, kw)
}

func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return !p.done() && t.Kind == TokenPunct && t.Text == s
}

func (p *parser) keyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.expected(fmt.Sprintf("%q", kw))
	}
	p.next()
	return nil
}

func (p *parser) punct(s string) error {
	if !p.isPunct(s) {
		return p.expected(fmt.Sprintf("%q", s))
	}
	p.next()
	return nil
}

// name consumes a bare word naming a table or column.
func (p *parser) name(what string) (string, error) {
	if p.done() || p.peek().Kind != TokenWord {
		return "", p.expected(what)
	}
	return p.next().Text, nil
}

// literal consumes a value: quoted text is a string, a bare word goes
// through ParseLiteral.
func (p *parser) literal() (any, error) {
	t := p.peek()
	switch {
	case p.done():
		return nil, p.expected("value")
	case t.Kind == TokenQuoted:
		p.next()
		return t.Text, nil
	case t.Kind == TokenWord:
		p.next()
		return ParseLiteral(t.Text), nil
	default:
		return nil, p.expected("value")
	}
}

func (p *parser) expected(what string) error {
	if p.done() {
		return fmt.Errorf("%w: expected %s at end of command", ErrSyntax, what)
	}
	return fmt.Errorf("%w: expected %s, got %q", ErrSyntax, what, p.peek().Text)
}

// create_table <name> <col:type>...
func (p *parser) createTable() (Command, error) {
	name, err := p.name("table name")
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Op: OpCreateTable, Table: name}
	for !p.done() {
		spec, err := p.name("column spec")
		if err != nil {
			return Command{}, err
		}
		cmd.Columns = append(cmd.Columns, spec)
	}
	if len(cmd.Columns) == 0 {
		return Command{}, fmt.Errorf("%w: create_table needs at least one column (name:type)", ErrSyntax)
	}
	return cmd, nil
}

// drop_table <name> and info <name>
func (p *parser) named(op Op) (Command, error) {
	name, err := p.name("table name")
	if err != nil {
		return Command{}, err
	}
	return Command{Op: op, Table: name}, nil
}

// insert into <name> values (<v>, ...)
func (p *parser) insert() (Command, error) {
	if err := p.keyword("into"); err != nil {
		return Command{}, err
	}
	name, err := p.name("table name")
	if err != nil {
		return Command{}, err
	}
	if err := p.keyword("values"); err != nil {
		return Command{}, err
	}
	if err := p.punct("("); err != nil {
		return Command{}, err
	}

	cmd := Command{Op: OpInsert, Table: name, Values: []string{}}
	if p.isPunct(")") {
		p.next()
		return cmd, nil
	}
	for {
		t := p.peek()
		if p.done() || t.Kind == TokenPunct {
			return Command{}, p.expected("value")
		}
		p.next()
		cmd.Values = append(cmd.Values, t.Text)

		if p.isPunct(",") {
			p.next()
			continue
		}
		if err := p.punct(")"); err != nil {
			return Command{}, err
		}
		return cmd, nil
	}
}

// select from <name> [where <pred>]
func (p *parser) selectFrom() (Command, error) {
	if err := p.keyword("from"); err != nil {
		return Command{}, err
	}
	name, err := p.name("table name")
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Op: OpSelect, Table: name}
	if p.done() {
		return cmd, nil
	}
	if err := p.keyword("where"); err != nil {
		return Command{}, err
	}
	cmd.Where, err = p.predicate()
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// update <name> set <col> = <v>[, <col> = <v>]... where <pred>
func (p *parser) update() (Command, error) {
	name, err := p.name("table name")
	if err != nil {
		return Command{}, err
	}
	if err := p.keyword("set"); err != nil {
		return Command{}, err
	}

	cmd := Command{Op: OpUpdate, Table: name, Set: map[string]any{}}
	for {
		col, v, err := p.assignment()
		if err != nil {
			return Command{}, err
		}
		if _, dup := cmd.Set[col]; dup {
			return Command{}, fmt.Errorf("%w: column %q assigned twice", ErrSyntax, col)
		}
		cmd.Set[col] = v
		if !p.isPunct(",") {
			break
		}
		p.next()
	}

	if err := p.keyword("where"); err != nil {
		return Command{}, err
	}
	cmd.Where, err = p.predicate()
	if err != nil {
		return Command{}, err
	}
	return cmd, nil
}

// delete from <name> where <pred>
func (p *parser) deleteFrom() (Command, error) {
	if err := p.keyword("from"); err != nil {
		return Command{}, err
	}
	name, err := p.name("table name")
	if err != nil {
		return Command{}, err
	}
	if err := p.keyword("where"); err != nil {
		return Command{}, err
	}
	where, err := p.predicate()
	if err != nil {
		return Command{}, err
	}
	return Command{Op: OpDelete, Table: name, Where: where}, nil
}

// predicate parses <col> = <v> [and <col> = <v>]...
func (p *parser) predicate() (table.Predicate, error) {
	pred := table.Predicate{}
	for {
		col, v, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if _, dup := pred[col]; dup {
			return nil, fmt.Errorf("%w: column %q repeated in where", ErrSyntax, col)
		}
		pred[col] = v
		if !p.isKeyword("and") {
			return pred, nil
		}
		p.next()
	}
}

// assignment parses <col> = <v>.
func (p *parser) assignment() (string, any, error) {
	col, err := p.name("column name")
	if err != nil {
		return "", nil, err
	}
	if err := p.punct("="); err != nil {
		return "", nil, err
	}
	v, err := p.literal()
	if err != nil {
		return "", nil, err
	}
	return col, v, nil
}
