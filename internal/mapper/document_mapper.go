package mapper

import (
	"councellorx-be/internal/dto"
	"councellorx-be/pkg/casefile"
)

func DocumentMetaToRefs(docs []dto.DocumentMeta) []casefile.DocumentRef {
	refs := make([]casefile.DocumentRef, 0, len(docs))
	for _, d := range docs {
		refs = append(refs, casefile.DocumentRef{Id: d.Id, Name: d.Name, Summary: d.Summary})
	}
	return refs
}

func DocumentRefsToMeta(refs []casefile.DocumentRef) []dto.DocumentMeta {
	docs := make([]dto.DocumentMeta, 0, len(refs))
	for _, r := range refs {
		docs = append(docs, dto.DocumentMeta{Id: r.Id, Name: r.Name, Summary: r.Summary})
	}
	return docs
}
