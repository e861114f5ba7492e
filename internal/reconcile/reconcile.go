package reconcile

// index is the lookup structure built from the catalogs once per run.
type index struct {
	disciplineByCode map[string]Discipline
	typeByCodeName   map[string]DocumentType
	typesByCode      map[string][]DocumentType
}

func buildIndex(n *normalizer, disciplines []Discipline, types []DocumentType) *index {
	idx := &index{
		disciplineByCode: make(map[string]Discipline, len(disciplines)),
		typeByCodeName:   make(map[string]DocumentType, len(types)),
		typesByCode:      make(map[string][]DocumentType),
	}
	// Duplicate codes: the last entry wins.
	for _, d := range disciplines {
		idx.disciplineByCode[n.code(d.Code)] = d
	}
	for _, dt := range types {
		code := n.code(dt.Code)
		idx.typeByCodeName[typeKey(code, n.name(dt.DisplayName()))] = dt
		idx.typesByCode[code] = append(idx.typesByCode[code], dt)
	}
	return idx
}

// Reconcile matches rows against the catalogs. onMatch, when non-nil, is
// called synchronously once per match in row order. Per-row problems are
// reported in the result's warnings; Reconcile itself cannot fail.
func Reconcile(rows []ImportRow, disciplines []Discipline, types []DocumentType, onMatch MatchFunc) Result {
	n := newNormalizer()
	idx := buildIndex(n, disciplines, types)

	var (
		res  Result
		warn warningCollector
		seen = make(map[string]struct{}, len(rows))
	)

	for _, row := range rows {
		if row.absent() {
			continue
		}

		nr := n.row(row)
		if !nr.complete() {
			continue
		}

		key := n.key(nr)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		res.Processed++

		discipline, ok := idx.disciplineByCode[nr.disciplineCode]
		if !ok {
			warn.disciplines.add(nr.disciplineCode)
			continue
		}

		docType, ok := idx.typeByCodeName[typeKey(nr.documentTypeCode, n.name(nr.documentTypeName))]
		if !ok {
			sameCode := idx.typesByCode[nr.documentTypeCode]
			if len(sameCode) == 0 {
				warn.documentTypes.add(nr.documentTypeCode)
				continue
			}
			known := make([]string, len(sameCode))
			for i, dt := range sameCode {
				known[i] = dt.DisplayName()
			}
			warn.mismatches.add(MismatchDescription(nr.documentTypeCode, nr.documentTypeName, known))
			continue
		}

		res.Matched++
		if onMatch != nil {
			onMatch(MatchResult{
				Discipline:   discipline,
				DocumentType: docType,
				DRS:          nr.drs,
			})
		}
	}

	res.Details = warn.warnings()
	res.Warnings = res.Details.Lines()
	return res
}
