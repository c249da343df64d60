package gallery

import "html/template"

var templates = template.Must(template.New("gallery").Parse(`
{{define "card"}}
<div class="collection-item">
    <a href="{{.Href}}">
        <div class="collection-image">{{if .Image}}
            <img src="{{.Image}}" alt="{{.Title}}" loading="lazy">{{end}}
        </div>
        <h3>{{.Title}}</h3>
        <p>{{.Count}} works</p>
    </a>
</div>
{{end}}
{{define "entry"}}
<div class="gallery-item"
     data-index="{{.Index}}"
     data-artwork="{{.ID}}"
     data-title="{{.Title}}"
     data-medium="{{.Medium}}"
     data-dimensions="{{.Dimensions}}"
     data-year="{{.Year}}">
    <img src="{{.Image}}" alt="{{.Title}}" loading="lazy">
    <div class="gallery-overlay">
        <h3>{{.Title}}</h3>
        <p>{{.Caption}}</p>
    </div>
</div>
{{end}}
`))
