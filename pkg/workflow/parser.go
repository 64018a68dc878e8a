package workflow

import (
	"io"
	"os"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gantry-ci/gantry/pkg/workflow/model"
)

// stringList accepts both a scalar and a sequence in the document, so
// `on: push` and `on: [push, pull_request]` parse to the same thing.
type stringList []string

func (l *stringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var single string
		if err := node.Decode(&single); err != nil {
			return err
		}
		*l = []string{single}

		return nil
	}

	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*l = many

	return nil
}

type workflowDoc struct {
	Name string            `yaml:"name"`
	On   stringList        `yaml:"on"`
	Env  map[string]string `yaml:"env"`
	Jobs yaml.Node         `yaml:"jobs"`
}

type jobDoc struct {
	Env   map[string]string `yaml:"env"`
	Needs stringList        `yaml:"needs"`
	Steps []stepDoc         `yaml:"steps"`
}

type stepDoc struct {
	Name             string            `yaml:"name"`
	ID               string            `yaml:"id"`
	If               string            `yaml:"if"`
	Run              string            `yaml:"run"`
	Uses             string            `yaml:"uses"`
	With             map[string]string `yaml:"with"`
	Env              map[string]string `yaml:"env"`
	WorkingDirectory string            `yaml:"working-directory"`
	ContinueOnError  bool              `yaml:"continue-on-error"`
	Timeout          string            `yaml:"timeout"`
}

// ParseFile reads and validates the workflow document at the given path.
func ParseFile(path string) (*model.Workflow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open workflow file %s", path)
	}
	defer file.Close()

	wf, err := Parse(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse workflow file %s", path)
	}

	return wf, nil
}

// Parse decodes and validates a workflow document. Unknown fields are
// rejected.
func Parse(r io.Reader) (*model.Workflow, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	doc := workflowDoc{}
	err := dec.Decode(&doc)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode workflow document")
	}

	wf := &model.Workflow{
		Name: doc.Name,
		On:   doc.On,
		Env:  doc.Env,
		Jobs: make(map[string]*model.Job),
	}

	err = decodeJobs(&doc.Jobs, wf)
	if err != nil {
		return nil, err
	}

	err = validate(wf)
	if err != nil {
		return nil, err
	}

	return wf, nil
}

// decodeJobs walks the jobs mapping node directly to preserve the
// declaration order, which a plain map decode would lose.
func decodeJobs(node *yaml.Node, wf *model.Workflow) error {
	if node.Kind == 0 || node.IsZero() {
		return ErrNoJobs
	}
	if node.Kind != yaml.MappingNode {
		return errors.New("jobs must be a mapping of job names to jobs")
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		var name string
		if err := keyNode.Decode(&name); err != nil {
			return errors.Wrap(err, "unable to decode job name")
		}
		if _, ok := wf.Jobs[name]; ok {
			return errors.Errorf("job %s declared twice", name)
		}

		var doc jobDoc
		if err := valueNode.Decode(&doc); err != nil {
			return errors.Wrapf(err, "unable to decode job %s", name)
		}

		job, err := buildJob(name, &doc)
		if err != nil {
			return err
		}

		wf.Jobs[name] = job
		wf.JobOrder = append(wf.JobOrder, name)
	}

	return nil
}

func buildJob(name string, doc *jobDoc) (*model.Job, error) {
	job := &model.Job{
		Name:  name,
		Env:   doc.Env,
		Needs: doc.Needs,
	}

	for idx := range doc.Steps {
		step, err := buildStep(&doc.Steps[idx])
		if err != nil {
			return nil, errors.Wrapf(err, "job %s step %d", name, idx+1)
		}
		job.Steps = append(job.Steps, step)
	}

	return job, nil
}

func buildStep(doc *stepDoc) (*model.Step, error) {
	step := &model.Step{
		Name:             doc.Name,
		ID:               doc.ID,
		If:               doc.If,
		Run:              doc.Run,
		Uses:             doc.Uses,
		With:             doc.With,
		Env:              doc.Env,
		WorkingDirectory: doc.WorkingDirectory,
		ContinueOnError:  doc.ContinueOnError,
	}

	if doc.Timeout != "" {
		timeout, err := time.ParseDuration(doc.Timeout)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid timeout %s", doc.Timeout)
		}
		step.Timeout = timeout
	}

	return step, nil
}

func validate(wf *model.Workflow) error {
	if len(wf.Jobs) == 0 {
		return ErrNoJobs
	}

	depGraph := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
	for _, name := range wf.JobOrder {
		err := depGraph.AddVertex(name)
		if err != nil {
			return errors.Wrapf(err, "unable to add job %s", name)
		}
	}

	for _, name := range wf.JobOrder {
		job := wf.Jobs[name]
		if len(job.Steps) == 0 {
			return errors.Wrap(ErrNoSteps, name)
		}

		for _, need := range job.Needs {
			if _, ok := wf.Jobs[need]; !ok {
				return errors.Wrapf(ErrUnknownJob, "job %s needs %s", name, need)
			}
			err := depGraph.AddEdge(need, name)
			if err != nil {
				if errors.Is(err, graph.ErrEdgeCreatesCycle) {
					return errors.Wrapf(ErrNeedsCycle, "job %s needs %s", name, need)
				}

				return errors.Wrapf(err, "job %s needs %s", name, need)
			}
		}

		for idx, step := range job.Steps {
			err := validateStep(step)
			if err != nil {
				return errors.Wrapf(err, "job %s step %d", name, idx+1)
			}
		}
	}

	return nil
}

func validateStep(step *model.Step) error {
	if step.Run == "" && step.Uses == "" {
		return ErrStepEmpty
	}
	if step.Run != "" && step.Uses != "" {
		return ErrStepAmbiguous
	}

	if _, err := parseCondition(step.If); err != nil {
		return err
	}

	if step.Uses != "" {
		if _, err := parseActionRef(step.Uses); err != nil {
			return err
		}
		if len(step.Env) > 0 {
			return ErrActionEnv
		}
	}

	return nil
}
