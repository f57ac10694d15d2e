package assistant

import "google.golang.org/genai"

// Declarations converts the actions' vendor-neutral parameter descriptions
// into Gemini function declarations.
func Declarations(actions []Action) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(actions))
	for _, action := range actions {
		properties := make(map[string]*genai.Schema)
		var required []string

		for _, param := range action.Parameters() {
			properties[param.Name] = &genai.Schema{
				Type:        schemaType(param.Type),
				Description: param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}

		decls = append(decls, &genai.FunctionDeclaration{
			Name:        action.Name(),
			Description: action.Description(),
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   required,
			},
		})
	}
	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
