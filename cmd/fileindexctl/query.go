package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/paimon-io/paimon-fileindex-go/fileindex"
	"github.com/paimon-io/paimon-fileindex-go/literal"
	"github.com/paimon-io/paimon-fileindex-go/metrics"
	"github.com/paimon-io/paimon-fileindex-go/predicate"
)

func newCmd_Query() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "evaluate one leaf predicate against a column's file-index readers",
		ArgsUsage: "<path> <column> <type> <op> [value]",
		Description: "type is one of TINYINT/SMALLINT/INT/BIGINT/FLOAT/DOUBLE/STRING/DATE/BOOLEAN;\n" +
			"op is one of EQ/NEQ/LT/LE/GT/GE/IS_NULL/IS_NOT_NULL.",
		Action: func(c *cli.Context) error {
			args := c.Args().Slice()
			if len(args) < 4 {
				return fmt.Errorf("query requires <path> <column> <type> <op> [value]")
			}
			path, column, typeName, opName := args[0], args[1], args[2], args[3]
			var value string
			if len(args) > 4 {
				value = args[4]
			}

			fieldType, err := parseFieldType(typeName)
			if err != nil {
				return err
			}
			kind, err := parseKind(opName)
			if err != nil {
				return err
			}
			var lits []literal.Literal
			if kind != predicate.IS_NULL && kind != predicate.IS_NOT_NULL {
				lit, err := parseLiteral(fieldType, value)
				if err != nil {
					return err
				}
				lits = append(lits, lit)
			}
			leaf, err := predicate.NewLeaf(0, column, fieldType, kind, lits...)
			if err != nil {
				return err
			}

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			container, err := fileindex.Open(f)
			if err != nil {
				return err
			}
			readers, err := container.ReadColumnIndex(column, fileindex.MapSchema{column: {}}, fieldType)
			if err != nil {
				return err
			}
			defer fileindex.CloseAll(readers)

			kinds := container.IndexKinds(column)
			for i, r := range readers {
				kind := "unknown"
				if i < len(kinds) {
					kind = kinds[i]
				}
				start := time.Now()
				result, err := r.Evaluate(leaf)
				metrics.EvaluationLatencyHistogram.WithLabelValues(kind).Observe(time.Since(start).Seconds())
				if err != nil {
					return err
				}
				switch {
				case result.IsSkip():
					metrics.PredicateEvaluationsByResult.WithLabelValues(kind, "skip").Inc()
					fmt.Printf("reader %d: SKIP\n", i)
				case result.IsRemain():
					metrics.PredicateEvaluationsByResult.WithLabelValues(kind, "remain").Inc()
					fmt.Printf("reader %d: REMAIN\n", i)
				default:
					metrics.PredicateEvaluationsByResult.WithLabelValues(kind, "bitmap").Inc()
					bm, err := result.Force()
					if err != nil {
						return err
					}
					fmt.Printf("reader %d: %d matching rows: %v\n", i, bm.Cardinality(), bm.ToArray())
				}
			}
			return nil
		},
	}
}

func parseFieldType(name string) (literal.FieldType, error) {
	switch strings.ToUpper(name) {
	case "BOOLEAN":
		return literal.BOOLEAN, nil
	case "TINYINT":
		return literal.TINYINT, nil
	case "SMALLINT":
		return literal.SMALLINT, nil
	case "INT":
		return literal.INT, nil
	case "BIGINT":
		return literal.BIGINT, nil
	case "FLOAT":
		return literal.FLOAT, nil
	case "DOUBLE":
		return literal.DOUBLE, nil
	case "STRING":
		return literal.STRING, nil
	case "DATE":
		return literal.DATE, nil
	default:
		return 0, fmt.Errorf("unsupported --type %q", name)
	}
}

func parseKind(name string) (predicate.Kind, error) {
	switch strings.ToUpper(name) {
	case "EQ":
		return predicate.EQ, nil
	case "NEQ":
		return predicate.NEQ, nil
	case "LT":
		return predicate.LT, nil
	case "LE":
		return predicate.LE, nil
	case "GT":
		return predicate.GT, nil
	case "GE":
		return predicate.GE, nil
	case "IS_NULL":
		return predicate.IS_NULL, nil
	case "IS_NOT_NULL":
		return predicate.IS_NOT_NULL, nil
	default:
		return 0, fmt.Errorf("unsupported --op %q", name)
	}
}

func parseLiteral(t literal.FieldType, value string) (literal.Literal, error) {
	switch t {
	case literal.BOOLEAN:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return literal.Literal{}, err
		}
		return literal.Bool(b), nil
	case literal.TINYINT:
		v, err := strconv.ParseInt(value, 10, 8)
		if err != nil {
			return literal.Literal{}, err
		}
		return literal.TinyInt(int8(v)), nil
	case literal.SMALLINT:
		v, err := strconv.ParseInt(value, 10, 16)
		if err != nil {
			return literal.Literal{}, err
		}
		return literal.SmallInt(int16(v)), nil
	case literal.INT, literal.DATE:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return literal.Literal{}, err
		}
		if t == literal.DATE {
			return literal.Date(int32(v)), nil
		}
		return literal.Int(int32(v)), nil
	case literal.BIGINT:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return literal.Literal{}, err
		}
		return literal.BigInt(v), nil
	case literal.FLOAT:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return literal.Literal{}, err
		}
		return literal.Float(float32(v)), nil
	case literal.DOUBLE:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return literal.Literal{}, err
		}
		return literal.Double(v), nil
	case literal.STRING:
		return literal.Str(value), nil
	default:
		return literal.Literal{}, fmt.Errorf("cannot parse a literal of type %s from the command line", t)
	}
}
