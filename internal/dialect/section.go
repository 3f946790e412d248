package dialect

// Section identifies which part of a node the compiler is asking the
// translator to spell. Not every node uses every section.
type Section uint8

const (
	Entry Section = iota
	Exit
	HintsEntry
	HintsExit
	From
	Where
	GroupBy
	Having
	OrderBy
	OrderByDefault // fallback ordering when paging requires ORDER BY
	LimitEntry
	LimitExit
	OffsetEntry
	OffsetExit
	Lock
	Operator
	Delimiter
	ColumnsEntry
	ColumnsExit
	ValuesEntry
	ValuesExit
	DefaultValues
	Set
	When
	Then
	Else
	Condition
	Alias
)

var sectionNames = [...]string{
	Entry:          "entry",
	Exit:           "exit",
	HintsEntry:     "hints entry",
	HintsExit:      "hints exit",
	From:           "from",
	Where:          "where",
	GroupBy:        "group by",
	Having:         "having",
	OrderBy:        "order by",
	OrderByDefault: "default order by",
	LimitEntry:     "limit entry",
	LimitExit:      "limit exit",
	OffsetEntry:    "offset entry",
	OffsetExit:     "offset exit",
	Lock:           "lock",
	Operator:       "operator",
	Delimiter:      "delimiter",
	ColumnsEntry:   "columns entry",
	ColumnsExit:    "columns exit",
	ValuesEntry:    "values entry",
	ValuesExit:     "values exit",
	DefaultValues:  "default values",
	Set:            "set",
	When:           "when",
	Then:           "then",
	Else:           "else",
	Condition:      "condition",
	Alias:          "alias",
}

func (s Section) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "unknown section"
}
